// Package imaging shrinks images before upload.
package imaging

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"

	_ "image/gif"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

type Outcome int

const (
	// Compressed means Data was re-encoded (and possibly downscaled).
	Compressed Outcome = iota + 1
	// Original means Data is the caller's input, unchanged; Reason says why.
	Original
)

func (o Outcome) String() string {
	switch o {
	case Compressed:
		return "compressed"
	case Original:
		return "original"
	}
	return "unknown"
}

type Options struct {
	MaxEdge int // longest side in pixels
	Quality int // JPEG quality 1-100
}

var Defaults = Options{MaxEdge: 1600, Quality: 85}

type Result struct {
	Outcome     Outcome
	Data        []byte
	ContentType string
	Width       int // 0 when the input could not be decoded
	Height      int
	Reason      string
}

func original(data []byte, contentType, reason string, w, h int) Result {
	return Result{Outcome: Original, Data: data, ContentType: contentType, Width: w, Height: h, Reason: reason}
}

// Compress decodes data, fits it inside opt.MaxEdge and re-encodes it.
// PNG stays PNG so transparency survives; everything else becomes JPEG.
// Animated GIFs and undecodable input are returned as Original.
func Compress(data []byte, contentType string, opt Options) Result {
	if opt.MaxEdge <= 0 {
		opt.MaxEdge = Defaults.MaxEdge
	}
	if opt.Quality <= 0 || opt.Quality > 100 {
		opt.Quality = Defaults.Quality
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return original(data, contentType, "decode: "+err.Error(), 0, 0)
	}
	b := src.Bounds()
	if format == "gif" {
		return original(data, contentType, "gif left untouched", b.Dx(), b.Dy())
	}

	img, resized := fit(src, opt.MaxEdge)
	var buf bytes.Buffer
	outType := "image/jpeg"
	if format == "png" {
		outType = "image/png"
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(&buf, img)
	} else {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: opt.Quality})
	}
	if err != nil {
		return original(data, contentType, "encode: "+err.Error(), b.Dx(), b.Dy())
	}
	if !resized && buf.Len() >= len(data) {
		return original(data, contentType, "no size gain", b.Dx(), b.Dy())
	}
	ob := img.Bounds()
	return Result{Outcome: Compressed, Data: buf.Bytes(), ContentType: outType, Width: ob.Dx(), Height: ob.Dy()}
}

func fit(src image.Image, maxEdge int) (image.Image, bool) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxEdge && h <= maxEdge {
		return src, false
	}
	if w >= h {
		h = max(1, h*maxEdge/w)
		w = maxEdge
	} else {
		w = max(1, w*maxEdge/h)
		h = maxEdge
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst, true
}
