// tsi distributes a secret bitmap into n steganographically hidden
// shadows, or recovers a secret bitmap from k of those shadows, using
// the (k, n) threshold scheme described in this repository's
// specification: Thien-Lin polynomial sharing over GF(257), with each
// shadow concealed in a carrier bitmap's pixel LSBs.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/contivero/kuang-shyr-tsung-ming/internal/orchestrator"
	"github.com/contivero/kuang-shyr-tsung-ming/internal/preview"
)

var (
	distributeFlag = flag.Bool("d", false, "distribute mode: split --secret into shadows")
	recoverFlag    = flag.Bool("r", false, "recover mode: reconstruct --secret from shadows")

	secretFlag = flag.String("secret", "", "secret image path (distribute input, recover output)")
	kFlag      = flag.Int("k", 0, "threshold: shares required to reconstruct (2 <= k <= n)")
	nFlag      = flag.Int("n", 0, "total shadows to produce (distribute only; default: count of regular files in --dir)")
	wFlag      = flag.Int("w", 0, "secret width in pixels (required for -r; not used by -d)")
	hFlag      = flag.Int("h", 0, "secret height in pixels (required for -r; not used by -d)")
	seedFlag   = flag.Uint("s", 691, "16-bit PRNG seed")
	dirFlag    = flag.String("dir", "./", "directory of carrier BMPs (-d) or stego BMPs (-r)")

	previewFlag = flag.String("preview", "", "write a PNG thumbnail of the secret to this path as a side effect")
	verboseFlag = flag.Bool("v", false, "print a one-line progress summary per stage to stderr")

	inspectFlag = flag.String("inspect", "", "write a PNG thumbnail of an arbitrary image file to --preview and exit (ignores -d/-r)")
)

const usageStr = `tsi: (k, n) threshold secret-image sharing over GF(257)

Usage:
    tsi -d --secret PATH -k K -n N --dir DIR [-s SEED] [-w W -h H]
    tsi -r --secret PATH -k K -w W -h H --dir DIR

    tsi -inspect PATH -preview OUT.png

Exactly one of -d or -r is required (unless -inspect is given).
Distribute writes shadow<i>.bmp (i = 1..n) to the current directory.
`

func main() {
	flag.Usage = func() { os.Stderr.WriteString(usageStr) }
	flag.Parse()

	if err := run(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	if *inspectFlag != "" {
		return runInspect(*inspectFlag, *previewFlag)
	}

	if *distributeFlag == *recoverFlag {
		return errors.New("tsi: exactly one of -d or -r is required")
	}

	log := orchestrator.Logger(func(string, ...any) {})
	if *verboseFlag {
		log = func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}
	}

	seed := uint16(*seedFlag)

	if *distributeFlag {
		return runDistribute(seed, log)
	}
	return runRecover(seed, log)
}

func runDistribute(seed uint16, log orchestrator.Logger) error {
	if *secretFlag == "" {
		return errors.New("tsi: -d requires --secret")
	}
	if *kFlag < 2 {
		return errors.New("tsi: -d requires -k >= 2")
	}
	n := *nFlag
	if n == 0 {
		var err error
		n, err = countRegularFiles(*dirFlag)
		if err != nil {
			return fmt.Errorf("tsi: %w", err)
		}
	}

	err := orchestrator.Distribute(orchestrator.DistributeOptions{
		Dir:        *dirFlag,
		SecretPath: *secretFlag,
		K:          *kFlag,
		N:          n,
		Seed:       seed,
		OutDir:     ".",
		Log:        log,
	})
	if err != nil {
		return fmt.Errorf("tsi: %w", err)
	}
	return maybePreviewSecret(*secretFlag)
}

func runRecover(seed uint16, log orchestrator.Logger) error {
	if *secretFlag == "" {
		return errors.New("tsi: -r requires --secret (as the output path)")
	}
	if *kFlag < 2 {
		return errors.New("tsi: -r requires -k >= 2")
	}
	if *wFlag <= 0 || *hFlag <= 0 {
		return errors.New("tsi: -r requires -w and -h")
	}

	err := orchestrator.Recover(orchestrator.RecoverOptions{
		Dir:     *dirFlag,
		OutPath: *secretFlag,
		Width:   uint32(*wFlag),
		Height:  uint32(*hFlag),
		K:       *kFlag,
		Log:     log,
	})
	if err != nil {
		return fmt.Errorf("tsi: %w", err)
	}
	return maybePreviewSecret(*secretFlag)
}

func maybePreviewSecret(secretPath string) error {
	if *previewFlag == "" {
		return nil
	}
	return runInspect(secretPath, *previewFlag)
}

func runInspect(inPath, outPath string) error {
	if outPath == "" {
		return errors.New("tsi: -inspect requires -preview OUT.png")
	}
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("tsi: %w", err)
	}
	defer out.Close()
	if err := preview.InspectFile(out, inPath); err != nil {
		return fmt.Errorf("tsi: %w", err)
	}
	return nil
}

func countRegularFiles(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if e.Type().IsRegular() {
			n++
		}
	}
	return n, nil
}
