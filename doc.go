/*
Package scrawl encodes map annotations (ordered lists of vector shapes)
into a compact, versioned binary form that travels either as a URL
fragment or hidden inside an ordinary WebP image.

The package provides a command line interface for converting between the
JSON interchange form, the raw binary buffer, the base64url share
fragment and the WebP container. To check the supported flags type:

	$ scrawl --help

In case you wish to integrate the API in a self constructed environment
here is a simple example:

	package main

	import (
		"fmt"
		"github.com/mapscrawl/scrawl"
	)

	func main() {
		d := &scrawl.Drawing{
			MapName: "regular-main-branch",
			Shapes: []scrawl.Shape{
				{Type: scrawl.ShapePoint, Pos: []float64{100, 200}, Color: "#ffffff"},
			},
		}

		buf, err := scrawl.Encode(d)
		if err != nil {
			fmt.Printf("Error encoding the drawing: %s", err.Error())
		}
		fmt.Println(scrawl.EncodeToString(buf))
	}
*/
package scrawl
