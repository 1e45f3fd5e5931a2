package main

import (
	"crypto/md5"
	"fmt"
	"os"

	"github.com/bgrewell/isobuild"
	"github.com/bgrewell/isobuild/internal/manifest"
	ftesting "github.com/bgrewell/isobuild/internal/testing"
	"github.com/bgrewell/isobuild/pkg/logging"
	"github.com/bgrewell/isobuild/pkg/option"
	"github.com/bgrewell/usage"
)

func main() {

	u := usage.NewUsage(
		usage.WithApplicationName("build_and_verify"),
		usage.WithApplicationDescription("build_and_verify is a functional testing application that is part of isobuild and is designed to verify that an image built from a manifest is reproducible and reads back as expected."),
	)
	help := u.AddBooleanOption("h", "help", false, "Display this help message", "", nil)
	input := u.AddArgument(1, "manifest", "The build manifest to run the tests against", "")
	groundTruth := u.AddArgument(2, "ground-truth", "Optional JSON file listing the expected files", "")
	parsed := u.Parse()

	if !parsed {
		u.PrintError(fmt.Errorf("failed to parse arguments"))
		os.Exit(1)
	}

	if *help {
		u.PrintUsage()
		os.Exit(0)
	}

	if input == nil || *input == "" {
		u.PrintError(fmt.Errorf("location of the build manifest <manifest> must be provided"))
		os.Exit(1)
	}

	m, err := manifest.Load(*input)
	if err != nil {
		fmt.Printf("Failed to load manifest: %s\n", err)
		os.Exit(1)
	}
	// Reproducibility needs a fixed clock.
	if m.SourceDateEpoch == nil {
		epoch := int64(0)
		m.SourceDateEpoch = &epoch
	}
	opts, err := m.Options()
	if err != nil {
		fmt.Printf("Invalid manifest: %s\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(logging.NewSimpleLogger(os.Stderr, logging.LEVEL_TRACE, true))
	opts = append(opts, option.WithCreateLogger(logger))

	first, err := iso.Create(opts...)
	if err != nil {
		fmt.Printf("Failed to build ISO: %s\n", err)
		os.Exit(1)
	}
	second, err := iso.Create(append(opts, option.WithWorkers(1))...)
	if err != nil {
		fmt.Printf("Failed to rebuild ISO: %s\n", err)
		os.Exit(1)
	}

	firstHash, secondHash := md5.Sum(first), md5.Sum(second)
	if firstHash != secondHash {
		fmt.Printf("MD5 hash of the first build does not match the second:\n  First:  %x\n  Second: %x\n", firstHash, secondHash)
		os.Exit(1)
	}

	img, err := iso.Verify(first, option.WithLogger(logger))
	if err != nil {
		fmt.Printf("Failed to read back ISO: %s\n", err)
		os.Exit(1)
	}
	folders, files := ftesting.GetFileAndFolderCounts(img)
	fmt.Printf("Built %s: %d sectors, %d files, %d folders, md5 %x\n", img.GetVolumeID(), img.GetVolumeSize(), files, folders, firstHash)

	if groundTruth != nil && *groundTruth != "" {
		gt, err := ftesting.LoadGroundTruth(*groundTruth)
		if err != nil {
			fmt.Printf("Failed to load ground truth: %s\n", err)
			os.Exit(1)
		}
		if err = ftesting.Validate(img, gt); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	}
}
