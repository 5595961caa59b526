package cli

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile string

	// Batch flags
	ForceInstall bool

	// Serve flags
	Addr string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		Addr: ":8000",
	}
}
