// meshtool is a CLI utility for compiling OBJ meshes into GPU-ready vertex
// buffers.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/Faultbox/meshforge/internal/assets"
	"github.com/Faultbox/meshforge/internal/config"
	"github.com/Faultbox/meshforge/internal/logger"
	"github.com/Faultbox/meshforge/pkg/formats"
	"github.com/Faultbox/meshforge/pkg/mesh"
	"github.com/Faultbox/meshforge/pkg/meshfile"
)

func main() {
	output := config.Flags().StringP("output", "o", "", "Output path for compile (default: <input>.mesh)")

	if err := config.ParseFlags(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printUsage()
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		printUsage()
		os.Exit(1)
	}

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	args = args[1:]

	if command == "help" || command == "-h" {
		printUsage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	fileCfg := logger.FileConfig{}
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
		fileCfg.JSON = cfg.Logging.JSON
	}
	if err := logger.InitWithFileConfig(cfg.Logging.Level, fileCfg, true); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Sugar.Debugf("Config: %+v", cfg)

	switch command {
	case "info":
		err = cmdInfo(cfg, args)
	case "compile", "c":
		err = cmdCompile(cfg, args, *output)
	case "inspect":
		err = cmdInspect(args)
	case "evict":
		err = cmdEvict(cfg, args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshtool - OBJ mesh compiler

Usage:
  meshtool [flags] <command> [args]

Commands:
  info <file.obj>               Show source and compiled mesh statistics
  compile <file.obj> [-o out]   Compile to a .mesh file
  inspect <file.mesh>           Show the header of a compiled mesh
  evict <key>                   Remove a compiled mesh from the disk cache

Flags:
  --config <path>        Config file (default: ./meshforge.yaml)
  --scale <radius>       Fit meshes to this radius (0 keeps source units)
  --reverse-winding      Reverse triangle winding while parsing
  --compression <name>   none, lz4, zstd or bg4_lz4
  --cache-dir <dir>      Compiled mesh cache directory
  --no-cache             Disable the compiled mesh cache
  --half                 Also report the float16 vertex layout
  --group <n>            Fragment group to extract (-1 for all)
  --debug                Enable debug logging

Examples:
  meshtool info model.obj
  meshtool --scale 1 compile model.obj -o model.mesh
  meshtool inspect model.mesh
  meshtool evict 3f9a...c2`)
}

// newManager builds the asset manager described by cfg.
func newManager(cfg *config.Config) (*assets.Manager, error) {
	tag, err := meshfile.ParseCompression(cfg.Cache.Compression)
	if err != nil {
		return nil, err
	}

	var disk *meshfile.Cache
	if cfg.Cache.Enabled {
		disk = meshfile.NewCache(cfg.Cache.Dir, tag, logger.Named("meshcache"))
	}

	opts := assets.Options{
		Scale:          cfg.Compile.Scale,
		ReverseWinding: cfg.Compile.ReverseWinding,
	}
	return assets.NewManager(opts, disk, cfg.Cache.MemoryEntries, logger.Named("assets")), nil
}

func cmdInfo(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: meshtool info <file.obj>")
	}
	path := args[0]

	obj, err := formats.LoadOBJ(path, formats.OBJOptions{ReverseWinding: cfg.Compile.ReverseWinding})
	if err != nil {
		return err
	}

	fmt.Printf("File:       %s\n", path)
	fmt.Printf("Positions:  %d (%d components)\n", obj.VertexCount(), obj.PositionSize)
	fmt.Printf("Normals:    %d\n", len(obj.Normals)/mesh.NormalSize)
	if obj.TexCoordSize > 0 {
		fmt.Printf("TexCoords:  %d (%d components)\n", len(obj.TexCoords)/obj.TexCoordSize, obj.TexCoordSize)
	}
	fmt.Printf("Triangles:  %d\n", obj.TriangleCount())
	if obj.Warnings > 0 {
		fmt.Printf("Warnings:   %d\n", obj.Warnings)
	}

	m, err := newManager(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	asset, err := m.Load(path)
	if err != nil {
		return err
	}
	msh := asset.Mesh

	fmt.Println()
	fmt.Println("Compiled:")
	fmt.Printf("  Key:      %s\n", asset.Key)
	fmt.Printf("  Vertices: %d (%d bytes each)\n", msh.VertexCount(), msh.Layout.ByteStride())
	fmt.Printf("  Bounds:   (%.3f, %.3f, %.3f) - (%.3f, %.3f, %.3f)\n",
		asset.Bounds.Min.X, asset.Bounds.Min.Y, asset.Bounds.Min.Z,
		asset.Bounds.Max.X, asset.Bounds.Max.Y, asset.Bounds.Max.Z)
	if asset.FromDisk {
		fmt.Println("  Source:   disk cache")
	}

	fmt.Println()
	printBufferLayout("Vertex layout", msh.Layout.BufferLayout())

	normals, tangents := mesh.DebugLines(msh.Vertices, msh.Layout, 1)
	fmt.Printf("Debug lines: %d normal, %d tangent segments\n", len(normals)/6, len(tangents)/6)

	batch := msh.Extract(cfg.Compile.Group)
	fmt.Println()
	fmt.Printf("Fragments (%d of %d):\n", msh.CountFragments(cfg.Compile.Group), len(msh.Fragments))

	ranges := append([]mesh.Range(nil), batch.Ranges...)
	sort.SliceStable(ranges, func(i, j int) bool {
		return ranges[i].IndexCount > ranges[j].IndexCount
	})
	for _, r := range ranges {
		fmt.Printf("  %-20s group %d  %d triangles\n", r.Material, r.Group, r.IndexCount/3)
	}

	if cfg.Compile.Half {
		half := mesh.PackHalf(msh.Vertices, msh.Layout)
		fmt.Println()
		printBufferLayout("Half layout", half.Layout.BufferLayout())
		fmt.Printf("  %d bytes for %d vertices\n", len(half.Data)*2, half.VertexCount())
	}
	return nil
}

func cmdCompile(cfg *config.Config, args []string, output string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: meshtool compile <file.obj> [-o output]")
	}
	path := args[0]

	if output == "" {
		output = strings.TrimSuffix(path, filepath.Ext(path)) + meshfile.Extension
	}

	tag, err := meshfile.ParseCompression(cfg.Cache.Compression)
	if err != nil {
		return err
	}

	m, err := newManager(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	asset, err := m.Load(path)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating %s: %w", output, err)
	}

	h, err := asset.Encode(f, tag)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(output)
		return fmt.Errorf("writing %s: %w", output, err)
	}

	logger.Info("compiled mesh written",
		zap.String("input", path),
		zap.String("output", output),
		zap.Int("vertices", h.VertexCount),
		zap.Stringer("compression", h.Compression))

	fmt.Printf("%s -> %s (%d vertices, %d indices, %s %d/%d bytes)\n",
		path, output, h.VertexCount, h.Indices, h.Compression, h.CompressedSize, h.RawSize)
	return nil
}

func printBufferLayout(title string, l gputypes.VertexBufferLayout) {
	fmt.Printf("%s (%d bytes per vertex):\n", title, l.ArrayStride)
	for _, a := range l.Attributes {
		fmt.Printf("  @location(%d) %-10s %-10s offset %3d\n",
			a.ShaderLocation, mesh.Attribute(a.ShaderLocation), a.Format, a.Offset)
	}
}

func cmdInspect(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: meshtool inspect <file.mesh>")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	h, err := meshfile.ReadHeader(f)
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	fmt.Printf("File:        %s\n", args[0])
	fmt.Printf("Version:     %d\n", h.Version)
	if h.Source.IsZero() {
		fmt.Println("Source:      (none)")
	} else {
		fmt.Printf("Source:      %s\n", h.Source)
	}
	fmt.Printf("Layout:      position %d, texcoord %d, stride %d\n",
		h.Layout.PositionSize, h.Layout.TexCoordSize, h.Layout.Stride)
	fmt.Printf("Vertices:    %d\n", h.VertexCount)
	fmt.Printf("Fragments:   %d (%d indices)\n", h.Fragments, h.Indices)
	fmt.Printf("Compression: %s (%d/%d bytes)\n", h.Compression, h.CompressedSize, h.RawSize)
	fmt.Printf("Bounds:      (%.3f, %.3f, %.3f) - (%.3f, %.3f, %.3f)\n",
		h.Bounds.Min.X, h.Bounds.Min.Y, h.Bounds.Min.Z,
		h.Bounds.Max.X, h.Bounds.Max.Y, h.Bounds.Max.Z)
	return nil
}

func cmdEvict(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: meshtool evict <key>")
	}

	key, err := meshfile.ParseHash(args[0])
	if err != nil {
		return err
	}

	tag, err := meshfile.ParseCompression(cfg.Cache.Compression)
	if err != nil {
		return err
	}
	disk := meshfile.NewCache(cfg.Cache.Dir, tag, logger.Named("meshcache"))
	if err := disk.Remove(key); err != nil {
		return err
	}

	fmt.Printf("Evicted %s\n", disk.Path(key))
	return nil
}
