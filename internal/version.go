package internal

// Version is the agritranslate release version
const Version = "0.4.0"
