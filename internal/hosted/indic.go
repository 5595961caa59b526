package hosted

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"codeberg.org/snonux/agritranslate/internal/lang"
	"codeberg.org/snonux/agritranslate/internal/translation"
)

type language struct {
	flores string // FLORES-200 code, e.g. "hin_Deva"
	name   string
}

// languages maps short codes to the tags the en→Indic model was trained with
var languages = map[string]language{
	"en":  {"eng_Latn", "English"},
	"hi":  {"hin_Deva", "Hindi"},
	"bn":  {"ben_Beng", "Bengali"},
	"gu":  {"guj_Gujr", "Gujarati"},
	"mr":  {"mar_Deva", "Marathi"},
	"pa":  {"pan_Guru", "Punjabi"},
	"or":  {"ory_Orya", "Odia"},
	"ta":  {"tam_Taml", "Tamil"},
	"te":  {"tel_Telu", "Telugu"},
	"kn":  {"kan_Knda", "Kannada"},
	"ml":  {"mal_Mlym", "Malayalam"},
	"as":  {"asm_Beng", "Assamese"},
	"ur":  {"urd_Arab", "Urdu"},
	"kok": {"gom_Deva", "Konkani"},
	"sat": {"sat_Olck", "Santali"},
	"mai": {"mai_Deva", "Maithili"},
	"ne":  {"npi_Deva", "Nepali"},
	"sd":  {"snd_Arab", "Sindhi"},
	"ks":  {"kas_Arab", "Kashmiri"},
	"brx": {"brx_Deva", "Bodo"},
	"mni": {"mni_Beng", "Manipuri"},
}

// FloresCode returns the FLORES-200 tag for a short language code
func FloresCode(code string) (string, bool) {
	l, ok := languages[code]
	return l.flores, ok
}

// Batch is one inference request: sentences tagged with source and target
type Batch struct {
	Source     string // FLORES-200 source tag
	Target     string // FLORES-200 target tag
	SourceName string
	TargetName string
	Sentences  []string
}

// Tagged returns the sentences prefixed with the language tags, the input
// format the IndicTrans2 tokenizer expects.
func (b Batch) Tagged() []string {
	out := make([]string, len(b.Sentences))
	for i, s := range b.Sentences {
		out[i] = b.Source + " " + b.Target + " " + s
	}
	return out
}

var whitespace = regexp.MustCompile(`\s+`)

// preprocess normalises text and builds a batch of one for pair
func preprocess(pair lang.Pair, text string) (Batch, error) {
	src, ok := languages[pair.Source]
	if !ok {
		return Batch{}, fmt.Errorf("%w: %s", translation.ErrUnsupportedLanguagePair, pair)
	}
	tgt, ok := languages[pair.Target]
	if !ok {
		return Batch{}, fmt.Errorf("%w: %s", translation.ErrUnsupportedLanguagePair, pair)
	}

	sentence := norm.NFC.String(text)
	sentence = strings.TrimSpace(whitespace.ReplaceAllString(sentence, " "))

	return Batch{
		Source:     src.flores,
		Target:     tgt.flores,
		SourceName: src.name,
		TargetName: tgt.name,
		Sentences:  []string{sentence},
	}, nil
}

var (
	spaceBeforePunct = regexp.MustCompile(`\s+([.,!?;:।॥])`)
	pipeDanda        = regexp.MustCompile(`\s*\|\s*$|\s*\|(\s)`)
)

// dandaScripts write the sentence end as a danda
var dandaScripts = map[string]bool{
	"Deva": true,
	"Beng": true,
	"Guru": true,
	"Orya": true,
}

// postprocess normalises a decoded sentence for the target FLORES tag
func postprocess(text, target string) string {
	out := norm.NFC.String(text)
	out = strings.TrimSpace(whitespace.ReplaceAllString(out, " "))
	out = spaceBeforePunct.ReplaceAllString(out, "$1")

	if _, script, ok := strings.Cut(target, "_"); ok && dandaScripts[script] {
		out = pipeDanda.ReplaceAllString(out, "।$1")
		out = strings.TrimSpace(out)
	}
	return out
}
