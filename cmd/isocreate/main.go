package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bgrewell/isobuild"
	"github.com/bgrewell/isobuild/internal/manifest"
	"github.com/bgrewell/isobuild/pkg/logging"
	"github.com/bgrewell/isobuild/pkg/option"
	"github.com/bgrewell/usage"
	"github.com/theckman/yacspin"
	"golang.org/x/term"
)

var (
	version = "dev"
)

// truncateString truncates the input string to the specified max length.
// If truncation occurs, it prepends "..." to indicate the string has been shortened.
func truncateString(input string, maxLength int) string {
	if len(input) <= maxLength {
		return input
	}
	if maxLength <= 3 {
		return input[len(input)-maxLength:]
	}
	return "..." + input[len(input)-(maxLength-3):]
}

// CreateProgressCallback returns a CreationProgressCallback that updates the spinner's message.
func CreateProgressCallback(spinner *yacspin.Spinner) option.CreationProgressCallback {
	return func(
		currentFilename string,
		bytesTransferred int64,
		totalBytes int64,
		currentFileNumber int,
		totalFileCount int,
	) {
		// Fetch terminal width
		width, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil {
			width = 80
		}

		fixedPart := fmt.Sprintf(" [%d/%d] ", currentFileNumber, totalFileCount)
		availableSpace := width - len(fixedPart) - 6
		if availableSpace < 10 {
			availableSpace = 10
		}

		spinner.Message(fmt.Sprintf("%s%s (%d bytes)", fixedPart, truncateString(currentFilename, availableSpace), totalBytes))
	}
}

// InitializeSpinner sets up and starts the yacspin spinner.
func InitializeSpinner() (*yacspin.Spinner, error) {
	settings := yacspin.Config{
		Frequency:         100 * time.Millisecond,
		ShowCursor:        false,
		SpinnerAtEnd:      false,
		CharSet:           yacspin.CharSets[14],
		Colors:            []string{"fgHiCyan"},
		StopColors:        []string{"fgHiGreen"},
		StopFailColors:    []string{"fgHiRed"},
		StopFailCharacter: "✗",
		StopCharacter:     "✓",
	}

	spinner, err := yacspin.New(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create spinner: %w", err)
	}
	if err := spinner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start spinner: %w", err)
	}
	return spinner, nil
}

func main() {
	u := usage.NewUsage(
		usage.WithApplicationName("isocreate"),
		usage.WithApplicationDescription("isocreate builds a bootable ISO-9660 image from a YAML manifest. Settings can be overridden with ISOBUILD_* environment variables or a .env file next to the manifest."),
	)
	help := u.AddBooleanOption("h", "help", false, "Display this help message", "", nil)
	debug := u.AddBooleanOption("v", "verbose", false, "Enable verbose (debug) logging", "", nil)
	trace := u.AddBooleanOption("vv", "trace", false, "Enable trace logging", "", nil)
	showLayout := u.AddBooleanOption("l", "layout", false, "Print the layout of the built image", "", nil)
	hexOffsets := u.AddBooleanOption("x", "hex", false, "Print layout offsets in hexadecimal", "", nil)
	verify := u.AddBooleanOption("verify", "verify", false, "Read the image back and check it before writing", "", nil)
	quiet := u.AddBooleanOption("q", "quiet", false, "Do not show a progress spinner", "", nil)
	manifestPath := u.AddArgument(1, "manifest", "Path to the YAML build manifest", "")
	outputPath := u.AddArgument(2, "output", "Path of the ISO image to write (default: <volume name>.iso)", "")
	parsed := u.Parse()

	if !parsed {
		u.PrintError(fmt.Errorf("failed to parse arguments"))
		os.Exit(1)
	}

	if *help {
		fmt.Println("isocreate v" + version)
		u.PrintUsage()
		os.Exit(0)
	}

	if manifestPath == nil || *manifestPath == "" {
		u.PrintError(fmt.Errorf("location of the build manifest <manifest> must be provided"))
		os.Exit(1)
	}

	level := logging.LEVEL_INFO
	if *debug {
		level = logging.LEVEL_DEBUG
	}
	if *trace {
		level = logging.LEVEL_TRACE
	}
	useColor := term.IsTerminal(int(os.Stderr.Fd()))
	logger := logging.NewLogger(logging.NewSimpleLogger(os.Stderr, level, useColor))

	m, err := loadManifest(*manifestPath)
	if err != nil {
		u.PrintError(err)
		os.Exit(1)
	}
	opts, err := m.Options()
	if err != nil {
		u.PrintError(err)
		os.Exit(1)
	}
	opts = append(opts, option.WithCreateLogger(logger))

	output := ""
	if outputPath != nil {
		output = *outputPath
	}
	if output == "" {
		output = strings.ToLower(m.VolumeName) + ".iso"
		if m.VolumeName == "" {
			output = "image.iso"
		}
	}

	var spinner *yacspin.Spinner
	if !*quiet && level == logging.LEVEL_INFO && term.IsTerminal(int(os.Stdout.Fd())) {
		spinner, err = InitializeSpinner()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize spinner: %v\n", err)
			fmt.Fprintf(os.Stderr, "Progress updates will be disabled.\n")
		} else {
			opts = append(opts, option.WithCreationProgress(CreateProgressCallback(spinner)))
		}
	}

	fail := func(err error) {
		if spinner != nil {
			spinner.StopFailMessage(fmt.Sprintf(" %v", err))
			_ = spinner.StopFail()
		} else {
			logger.Error(err, "build failed")
		}
		os.Exit(1)
	}

	img, err := iso.Build(context.Background(), opts...)
	if err != nil {
		fail(err)
	}

	if *verify {
		view, err := iso.Verify(img.Data)
		if err != nil {
			fail(fmt.Errorf("verification failed: %w", err))
		}
		logger.Info("image verified", "volume", view.GetVolumeID(), "files", len(view.ListFiles()),
			"el_torito", view.HasElTorito())
	}

	if err = os.WriteFile(output, img.Data, 0o644); err != nil {
		fail(fmt.Errorf("failed to write %s: %w", output, err))
	}

	if spinner != nil {
		spinner.StopMessage(fmt.Sprintf(" Image written to %s (%d sectors)", output, img.Layout.VolumeSpaceSize))
		_ = spinner.Stop()
	} else {
		logger.Info("image written", "path", output, "sectors", img.Layout.VolumeSpaceSize)
	}

	if *showLayout {
		img.Layout.Print(os.Stdout, term.IsTerminal(int(os.Stdout.Fd())), *hexOffsets)
	}
}

// loadManifest reads the manifest and applies .env files and environment overrides. A .env beside the manifest is
// loaded before one in the working directory; variables already set are never replaced.
func loadManifest(path string) (*manifest.Manifest, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	if err = manifest.LoadEnv(filepath.Join(filepath.Dir(path), ".env"), ".env"); err != nil {
		return nil, err
	}
	if err = m.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return m, nil
}
