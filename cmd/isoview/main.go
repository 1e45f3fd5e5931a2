package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bgrewell/isobuild"
	"github.com/bgrewell/isobuild/pkg/iso9660"
	"github.com/bgrewell/isobuild/pkg/logging"
	"github.com/bgrewell/isobuild/pkg/option"
	"github.com/bgrewell/usage"
	"github.com/fatih/color"
	"golang.org/x/term"
)

func main() {

	u := usage.NewUsage(
		usage.WithApplicationName("isoview"),
		usage.WithApplicationDescription("isoview prints the volume descriptors, boot catalog and root directory of an ISO-9660 image and can extract its files."),
	)
	help := u.AddBooleanOption("h", "help", false, "Show this help message", "optional", nil)
	verbose := u.AddBooleanOption("v", "verbose", false, "Print verbose output", "", nil)
	keepVersion := u.AddBooleanOption("k", "keep-version", false, "Keep the ;1 version suffix on file names", "", nil)
	path := u.AddArgument(1, "iso-path", "Path to the ISO image to read", "")
	extractDir := u.AddArgument(2, "extract-dir", "Directory to extract the files and boot image into", "")
	parsed := u.Parse()

	if !parsed {
		u.PrintError(fmt.Errorf("failed to parse arguments"))
		os.Exit(1)
	}

	if *help {
		u.PrintUsage()
		os.Exit(0)
	}

	if path == nil || *path == "" {
		u.PrintError(fmt.Errorf("location of the iso file <iso-path> must be provided"))
		os.Exit(1)
	}

	level := logging.LEVEL_INFO
	if *verbose {
		level = logging.LEVEL_TRACE
	}
	logger := logging.NewLogger(logging.NewSimpleLogger(os.Stderr, level, term.IsTerminal(int(os.Stderr.Fd()))))

	i, err := iso.Open(*path,
		option.WithLogger(logger),
		option.WithStripVersionInfo(!*keepVersion),
	)
	if err != nil {
		u.PrintError(err)
		os.Exit(1)
	}
	defer i.Close()

	printSummary(i, term.IsTerminal(int(os.Stdout.Fd())))

	if extractDir != nil && *extractDir != "" {
		if err := extract(i, *extractDir, !*keepVersion); err != nil {
			u.PrintError(err)
			os.Exit(1)
		}
	}
}

func printSummary(i *iso9660.ISO9660, useColor bool) {
	header := color.New(color.FgCyan, color.Bold)
	if !useColor {
		header.DisableColor()
	}

	header.Println("=== Primary Volume Descriptor ===")
	fmt.Printf("  Volume:       %s\n", i.GetVolumeID())
	fmt.Printf("  Sectors:      %d\n", i.GetVolumeSize())
	fmt.Printf("  Application:  %s\n", i.GetApplicationID())
	fmt.Printf("  Publisher:    %s\n", i.GetPublisherID())
	fmt.Printf("  Created:      %s\n", i.GetCreationDateTime())

	sa := i.SystemArea()
	if sa.Partitioned {
		p := sa.Partition()
		header.Println("=== Protective MBR ===")
		fmt.Printf("  Type:         %s\n", p.Type)
		fmt.Printf("  Blocks:       %d\n", p.Blocks)
	}

	if i.HasElTorito() {
		c := i.BootCatalog()
		header.Println("=== El Torito ===")
		fmt.Printf("  Catalog:      %d\n", c.ObjectLocation)
		fmt.Printf("  Platform:     %s\n", c.Validation.Platform)
		fmt.Printf("  Emulation:    %s\n", c.Initial.Emulation)
		fmt.Printf("  Load segment: %#x\n", c.Initial.EffectiveLoadSegment())
		fmt.Printf("  Sectors:      %d\n", c.Initial.SectorCount)
		fmt.Printf("  Load RBA:     %d\n", c.Initial.LoadRBA)
	}

	header.Println("=== Root Directory ===")
	names := i.FileNames()
	for n, rec := range i.ListFiles() {
		fmt.Printf("  %-34s %10d bytes  @ %d\n", names[n], rec.DataLength, rec.LocationOfExtent)
	}
}

// extract writes every root directory file into dir. The boot image is written to [BOOT]/boot.img using the
// 512-byte sector count from the catalog, which is the most a BIOS would load.
func extract(i *iso9660.ISO9660, dir string, stripVersion bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	for _, rec := range i.ListFiles() {
		name := rec.FileIdentifier
		if stripVersion {
			name = rec.Name()
		}
		data, err := i.ReadFile(rec.FileIdentifier)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}

	if !i.HasElTorito() {
		return nil
	}
	bootDir := filepath.Join(dir, "[BOOT]")
	if err := os.MkdirAll(bootDir, 0755); err != nil {
		return fmt.Errorf("failed to create boot directory %s: %w", bootDir, err)
	}
	length := uint32(i.BootCatalog().Initial.SectorCount) * 512
	image, err := i.BootImage(length)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(bootDir, "boot.img"), image, 0644)
}
