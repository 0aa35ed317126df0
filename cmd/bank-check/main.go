// bank-check validates a sound bank file without opening an audio
// device: it parses the bank, decodes every referenced clip and
// reports entries the catalog would reject.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/baratgabor/soundpool"
	"github.com/baratgabor/soundpool/bank"
	"github.com/baratgabor/soundpool/beepout"
)

var (
	bankPath string
	knownArg string
	rate     int
)

func init() {
	flag.StringVar(&bankPath, "bank", "", "bank file to validate")
	flag.StringVar(&knownArg, "known", "", "comma-separated sound types the application expects")
	flag.IntVar(&rate, "rate", 48000, "decode sample rate")
}

// report collects catalog diagnostics for printing
type report struct {
	soundpool.NopObserver
	skipped []string
	empty   bool
}

func (r *report) VariantSkipped(v soundpool.SoundVariant, reason error) {
	r.skipped = append(r.skipped, fmt.Sprintf("%q: %v", v.Sound, reason))
}

func (r *report) EmptyCatalog() {
	r.empty = true
}

func main() {
	flag.Parse()

	if bankPath == "" {
		fmt.Fprintln(os.Stderr, "usage: bank-check -bank sounds.yaml [-known coin,explosion]")
		os.Exit(2)
	}

	cfg := beepout.DefaultConfig()
	cfg.SampleRate = rate
	factory := beepout.NewFactory(cfg)
	loader := bank.NewLoader(factory.LoadClipFile)

	b, err := loader.Load(bankPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bank-check: %v\n", err)
		os.Exit(1)
	}

	problems := 0
	for _, loadErr := range b.Errors {
		fmt.Printf("load error: %v\n", loadErr)
		problems++
	}

	rep := &report{}
	catalog := soundpool.BuildCatalog(b.Variants, rep)
	for _, line := range rep.skipped {
		fmt.Printf("skipped: %s\n", line)
	}
	problems += len(rep.skipped)

	if rep.empty {
		fmt.Println("catalog is empty: no playable variants")
		problems++
	}

	known := knownSounds(b)
	if missing := catalog.Missing(known); len(missing) > 0 {
		for _, st := range missing {
			fmt.Printf("missing: no variants for %q\n", st)
		}
		problems += len(missing)
	}

	variants := 0
	for _, st := range catalog.Sounds() {
		variants += len(catalog.Variants(st))
	}
	fmt.Printf("%s: %d sound types, %d playable variants\n", bankPath, catalog.Len(), variants)

	if problems > 0 {
		fmt.Printf("%d problem(s) found\n", problems)
		os.Exit(1)
	}
	fmt.Println("ok")
}

// knownSounds merges the -known flag with the bank's own known list
func knownSounds(b *bank.Bank) []soundpool.SoundType {
	var known []soundpool.SoundType
	if knownArg != "" {
		for _, name := range strings.Split(knownArg, ",") {
			name = strings.TrimSpace(name)
			if name != "" {
				known = append(known, soundpool.SoundType(name))
			}
		}
		return known
	}
	return b.Config.KnownSounds
}
