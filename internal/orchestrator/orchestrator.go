// Package orchestrator composes the cryptographic core (prng, gf257,
// share, reconstruct, stego) with the file-system collaborators spec.md
// §1 calls out as "thin shells around the core": directory enumeration
// for candidate carriers and BMP file I/O. Distribute and Recover are
// the two pipelines described in spec.md §4.7.
package orchestrator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/contivero/kuang-shyr-tsung-ming/internal/bmp"
	"github.com/contivero/kuang-shyr-tsung-ming/internal/prng"
	"github.com/contivero/kuang-shyr-tsung-ming/internal/reconstruct"
	"github.com/contivero/kuang-shyr-tsung-ming/internal/share"
	"github.com/contivero/kuang-shyr-tsung-ming/internal/stego"
)

// Error taxonomy, per spec.md §7. Sub-packages raise their own
// sentinel errors (bmp.ErrUnsupportedBmp, reconstruct.ErrZeroPivot,
// ...); this package passes those through with added context via %w,
// so errors.Is/As still reach the underlying cause. The sentinels
// below cover only the conditions this package detects itself.
var (
	ErrInvalidArguments     = errors.New("orchestrator: invalid arguments")
	ErrIoFailure            = errors.New("orchestrator: I/O failure")
	ErrInsufficientCarriers = errors.New("orchestrator: too few suitable carrier files")
	ErrMalformedShadow      = errors.New("orchestrator: malformed or inconsistent shadow")
)

// Logger receives one-line progress messages; the CLI wires this to
// os.Stderr when -v is set, and to a no-op otherwise (see cmd/tsi).
type Logger func(format string, args ...any)

func noopLogger(string, ...any) {}

// DistributeOptions configures a Distribute run.
type DistributeOptions struct {
	Dir        string // directory containing candidate carrier BMPs
	SecretPath string
	K, N       int
	Seed       uint16
	OutDir     string // where shadow<i>.bmp files are written
	Log        Logger
}

// Distribute loads the secret image, whitens it, shares it into N
// shadows, hides each shadow inside one qualifying carrier from Dir,
// and writes the N stego outputs to OutDir as shadow<i>.bmp.
func Distribute(opts DistributeOptions) error {
	log := opts.Log
	if log == nil {
		log = noopLogger
	}
	if opts.K < 2 || opts.N < opts.K || opts.N > 65535 {
		return fmt.Errorf("Distribute: %w: need 2 <= k <= n <= 65535, got k=%d n=%d",
			ErrInvalidArguments, opts.K, opts.N)
	}

	secret, err := loadBitmap(opts.SecretPath)
	if err != nil {
		return err
	}
	log("loaded secret %s: %dx%d, %d pixel bytes", opts.SecretPath, secret.Width, secret.AbsHeight(), len(secret.Pixels))

	if len(secret.Pixels)%opts.K != 0 {
		return fmt.Errorf("Distribute: %w: secret has %d pixel bytes, not divisible by k=%d",
			ErrInvalidArguments, len(secret.Pixels), opts.K)
	}

	perShadow := len(secret.Pixels) / opts.K
	carriers, err := findCarriers(opts.Dir, opts.N, opts.K, perShadow)
	if err != nil {
		return err
	}
	log("selected %d carrier(s) from %s", len(carriers), opts.Dir)

	prng.XOR(secret.Pixels, secret.Pixels, opts.Seed)
	log("applied whitening mask with seed=%d", opts.Seed)

	result, err := share.Evaluate(secret.Pixels, opts.K, opts.N)
	if err != nil {
		return fmt.Errorf("Distribute: %w", err)
	}
	if result.RepairedGroups > 0 {
		log("warning: coefficient-repair rule triggered on %d pixel group(s); recovered secret will differ from the original at those positions (see spec.md §9)", result.RepairedGroups)
	}

	width, height, err := bmp.ShadowDimensions(perShadow)
	if err != nil {
		return fmt.Errorf("Distribute: %w", err)
	}

	if opts.OutDir == "" {
		opts.OutDir = "."
	}
	for i := 0; i < opts.N; i++ {
		shadowIndex := uint16(i + 1)
		shadow, err := bmp.New(uint32(width), uint32(height), opts.Seed, shadowIndex, len(result.Shadows[i]))
		if err != nil {
			return fmt.Errorf("Distribute: %w", err)
		}
		copy(shadow.Pixels, result.Shadows[i])

		carrier, err := loadBitmap(carriers[i])
		if err != nil {
			return err
		}

		stegoBmp, err := stego.Conceal(carrier, shadow)
		if err != nil {
			return fmt.Errorf("Distribute: %w", err)
		}

		outPath := filepath.Join(opts.OutDir, fmt.Sprintf("shadow%d.bmp", shadowIndex))
		if err := saveBitmap(outPath, stegoBmp); err != nil {
			return err
		}
		log("wrote %s (carrier %s, shadow index %d)", outPath, carriers[i], shadowIndex)
	}
	return nil
}

// RecoverOptions configures a Recover run.
type RecoverOptions struct {
	Dir           string // directory containing stego BMPs
	OutPath       string
	Width, Height uint32
	K             int
	Log           Logger
}

// Recover reads K stego BMPs from Dir, extracts their hidden shadows,
// reconstructs the secret, and writes it to OutPath.
func Recover(opts RecoverOptions) error {
	log := opts.Log
	if log == nil {
		log = noopLogger
	}
	if opts.K < 2 || opts.Width == 0 || opts.Height == 0 {
		return fmt.Errorf("Recover: %w: need k >= 2 and positive width/height", ErrInvalidArguments)
	}

	secretPixelLen := int(bmp.PixelArraySize(opts.Width, opts.Height))
	if secretPixelLen%opts.K != 0 {
		return fmt.Errorf("Recover: %w: %dx%d secret not divisible by k=%d", ErrInvalidArguments, opts.Width, opts.Height, opts.K)
	}
	perShadow := secretPixelLen / opts.K

	files, err := listRegularFiles(opts.Dir)
	if err != nil {
		return err
	}

	var shadows [][]byte
	var indices []int
	var seed uint16
	haveSeed := false

	for _, path := range files {
		if len(shadows) == opts.K {
			break
		}
		carrier, err := loadBitmap(path)
		if err != nil {
			continue // not a usable BMP; skip the candidate, as §4.7 step 1 requires
		}
		if carrier.ShadowIndex == 0 {
			continue
		}
		shadow, err := stego.Reveal(carrier, perShadow)
		if err != nil {
			continue
		}
		if !haveSeed {
			seed, haveSeed = carrier.Seed, true
		} else if carrier.Seed != seed {
			return fmt.Errorf("Recover: %w: shadow %s disagrees with earlier shadows on seed", ErrMalformedShadow, path)
		}
		shadows = append(shadows, shadow.Pixels)
		indices = append(indices, int(carrier.ShadowIndex))
		log("extracted shadow index %d from %s", carrier.ShadowIndex, path)
	}

	if len(shadows) < opts.K {
		return fmt.Errorf("Recover: %w: found %d usable shadow(s), need %d", ErrInsufficientCarriers, len(shadows), opts.K)
	}

	pixels, err := reconstruct.Reconstruct(shadows, indices)
	if err != nil {
		return fmt.Errorf("Recover: %w", err)
	}
	prng.XOR(pixels, pixels, seed)
	log("reconstructed %d pixel bytes, inverted whitening mask with seed=%d", len(pixels), seed)

	out, err := bmp.New(opts.Width, opts.Height, 0, 0, len(pixels))
	if err != nil {
		return fmt.Errorf("Recover: %w", err)
	}
	copy(out.Pixels, pixels)

	if err := saveBitmap(opts.OutPath, out); err != nil {
		return err
	}
	log("wrote %s", opts.OutPath)
	return nil
}

func loadBitmap(path string) (*bmp.Bitmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIoFailure, err)
	}
	defer f.Close()
	b, err := bmp.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	return b, nil
}

func saveBitmap(path string, b *bmp.Bitmap) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIoFailure, err)
	}
	defer f.Close()
	if err := bmp.Encode(f, b); err != nil {
		return fmt.Errorf("%w: %v", ErrIoFailure, err)
	}
	return nil
}

func listRegularFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIoFailure, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}

// findCarriers enumerates up to n candidate files in dir and selects
// those that are valid 8-bit BMPs whose pixel count is divisible by k
// and large enough to embed one shadow of perShadow pixels (each
// shadow byte needs 8 carrier pixel bytes).
func findCarriers(dir string, n, k, perShadow int) ([]string, error) {
	files, err := listRegularFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) > n {
		files = files[:n]
	}

	var qualifying []string
	for _, path := range files {
		if len(qualifying) == n {
			break
		}
		b, err := loadBitmap(path)
		if err != nil {
			continue
		}
		if len(b.Pixels)%k != 0 {
			continue
		}
		if len(b.Pixels) < perShadow*8 {
			continue
		}
		qualifying = append(qualifying, path)
	}

	if len(qualifying) < n {
		return nil, fmt.Errorf("%w: found %d candidate(s) in %s, need %d", ErrInsufficientCarriers, len(qualifying), dir, n)
	}
	return qualifying, nil
}
