package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/disintegration/imaging"
	"github.com/mapscrawl/scrawl"
	"github.com/mapscrawl/scrawl/container"
	"github.com/mapscrawl/scrawl/utils"
	"golang.org/x/image/webp"
	"golang.org/x/term"
)

const HelpBanner = `
┌─┐┌─┐┬─┐┌─┐┬ ┬┬
└─┐│  ├┬┘├─┤││││
└─┘└─┘┴└─┴ ┴└┴┘┴─┘

Map annotation drawing codec.
    Version: %s

`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// previewSize bounds the longest side of an exported preview thumbnail.
const previewSize = 512

// Version indicates the current build version.
var Version string

var (
	// Flags
	source      = flag.String("in", pipeName, "Source file (.json, .bin, .webp), share fragment or URL")
	destination = flag.String("out", pipeName, "Destination file")
	mapName     = flag.String("map", "", "Map name stored with the drawing")
	stroke      = flag.Float64("stroke", 0, "Default stroke width for shapes without their own")
	baseFile    = flag.String("base", "", "WebP screenshot the drawing is embedded into")
	asLink      = flag.Bool("link", false, "Emit the drawing as a base64url share fragment")
	preview     = flag.String("preview", "", "Save the container preview image as a thumbnail")
)

// spinner used to instantiate and call the progress indicator.
var spinner *utils.Spinner

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	spinnerText := fmt.Sprintf("%s %s",
		utils.DecorateText("✎ SCRAWL", utils.StatusMessage),
		utils.DecorateText("is converting the drawing...", utils.DefaultMessage))
	spinner = utils.NewSpinner(spinnerText, time.Millisecond*200, true)

	// Capture CTRL-C and restore the cursor visibility back.
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalChan
		spinner.RestoreCursor()
		os.Exit(1)
	}()

	now := time.Now()

	input, err := readInput(*source)
	if err != nil {
		log.Fatalf(
			utils.DecorateText("Failed to load the source drawing: %v", utils.ErrorMessage),
			utils.DecorateText(err.Error(), utils.DefaultMessage),
		)
	}

	spinner.Start()
	output, err := transform(input)
	spinner.StopMsg = fmt.Sprintf("%s %s",
		utils.DecorateText("✎ SCRAWL", utils.StatusMessage),
		utils.DecorateText("is converting the drawing... ✔", utils.DefaultMessage))
	spinner.Stop()

	if err == nil {
		err = writeOutput(*destination, output)
	}
	printStatus(*destination, err)

	fmt.Fprintf(os.Stderr, "\nExecution time: %s\n",
		utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
}

// transform dispatches on the content of the input: a WebP container, a
// JSON drawing, a base64url share fragment or a raw binary buffer.
func transform(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, []byte("RIFF")):
		return fromContainer(data)
	case looksLikeJSON(data):
		return fromJSON(data)
	case looksLikeFragment(data):
		return fromFragment(data)
	default:
		return fromBinary(data)
	}
}

// fromJSON encodes a JSON drawing into the binary form and renders it as
// a share fragment, a WebP container or a raw buffer, depending on the
// flags and the destination extension.
func fromJSON(data []byte) ([]byte, error) {
	d, err := parseDrawing(data)
	if err != nil {
		return nil, fmt.Errorf("unable to parse the drawing: %v", err)
	}
	if *mapName != "" {
		d.MapName = *mapName
	}
	if *stroke > 0 {
		d.DefaultStroke = *stroke
	}

	buf, err := scrawl.Encode(d)
	if err != nil {
		return nil, err
	}
	if *asLink {
		return []byte(scrawl.EncodeToString(buf) + "\n"), nil
	}
	if filepath.Ext(*destination) == ".webp" {
		var base []byte
		if *baseFile != "" {
			if base, err = os.ReadFile(*baseFile); err != nil {
				return nil, fmt.Errorf("unable to read the base image: %v", err)
			}
		}
		return container.Embed(buf, d.MapName, base)
	}
	return buf, nil
}

// fromContainer pulls the drawing out of a WebP file and optionally
// saves the pixel preview as a thumbnail.
func fromContainer(data []byte) ([]byte, error) {
	buf, name, err := container.Extract(data)
	if err != nil {
		return nil, err
	}
	if *preview != "" {
		if err := savePreview(data, *preview); err != nil {
			return nil, err
		}
	}
	if *asLink {
		return []byte(scrawl.EncodeToString(buf) + "\n"), nil
	}
	d, err := scrawl.Decode(buf)
	if err != nil {
		return nil, err
	}
	if d.MapName == "" {
		d.MapName = name
	}
	return marshalDrawing(d)
}

// fromFragment turns a base64url share fragment back into JSON shapes.
func fromFragment(data []byte) ([]byte, error) {
	buf, err := scrawl.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("unable to decode the share fragment: %v", err)
	}
	return fromBinary(buf)
}

// fromBinary decodes a raw buffer into JSON shapes.
func fromBinary(buf []byte) ([]byte, error) {
	if *asLink {
		return []byte(scrawl.EncodeToString(buf) + "\n"), nil
	}
	d, err := scrawl.Decode(buf)
	if err != nil {
		return nil, err
	}
	return marshalDrawing(d)
}

// savePreview decodes the container's pixel chunks and writes them out
// as a bounded thumbnail.
func savePreview(file []byte, dest string) error {
	img, err := webp.Decode(bytes.NewReader(file))
	if err != nil {
		return fmt.Errorf("unable to decode the preview image: %v", err)
	}
	thumb := imaging.Fit(img, previewSize, previewSize, imaging.Lanczos)
	if err := imaging.Save(thumb, dest); err != nil {
		return fmt.Errorf("unable to save the preview image: %v", err)
	}
	return nil
}

// parseDrawing accepts either a full drawing object or the bare shape
// array form of the JSON interchange path.
func parseDrawing(data []byte) (*scrawl.Drawing, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var shapes []scrawl.Shape
		if err := json.Unmarshal(trimmed, &shapes); err != nil {
			return nil, err
		}
		return &scrawl.Drawing{Shapes: shapes}, nil
	}
	var d scrawl.Drawing
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func marshalDrawing(d *scrawl.Drawing) ([]byte, error) {
	out, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func looksLikeJSON(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

// looksLikeFragment reports whether the input is plain base64url text,
// which can never hold the binary header's version byte unescaped.
func looksLikeFragment(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return false
	}
	for _, c := range trimmed {
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == '-' || c == '_' || c == '=':
		default:
			return false
		}
	}
	return true
}

// readInput loads the source bytes from a URL, the stdin pipe or a
// regular file.
func readInput(src string) ([]byte, error) {
	if utils.IsValidUrl(src) {
		blob, err := utils.DownloadBlob(src)
		if err != nil {
			return nil, err
		}
		defer blob.Close()
		defer os.Remove(blob.Name())
		return io.ReadAll(blob)
	}
	if src == pipeName {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, errors.New("`-` should be used with a pipe for stdin")
		}
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(src)
}

// writeOutput stores the result into the destination file or the stdout
// pipe.
func writeOutput(dest string, data []byte) error {
	if dest == pipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return errors.New("`-` should be used with a pipe for stdout")
		}
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return fmt.Errorf("unable to create the destination file: %v", err)
	}
	return nil
}

// printStatus displays the relevant information about the conversion.
func printStatus(fname string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr,
			utils.DecorateText("\nError converting the drawing: %s", utils.ErrorMessage),
			utils.DecorateText(fmt.Sprintf("\n\tReason: %v\n", err.Error()), utils.DefaultMessage),
		)
		os.Exit(1)
	}
	if fname != pipeName {
		fmt.Fprintf(os.Stderr, "\nThe converted drawing has been saved as: %s %s\n",
			utils.DecorateText(filepath.Base(fname), utils.SuccessMessage),
			utils.DefaultColor,
		)
	}
}
