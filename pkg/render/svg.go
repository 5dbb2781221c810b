package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"
)

// RenderSVG lays out a DOT graph with Graphviz and returns it as SVG.
// The root element is sized in pixels from its viewBox.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var out bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &out); err != nil {
		return nil, fmt.Errorf("render SVG: %w", err)
	}
	return sizeToViewBox(out.Bytes()), nil
}

var (
	rootTagRe  = regexp.MustCompile(`<svg\b[^>]*>`)
	viewBoxRe  = regexp.MustCompile(`viewBox="[-0-9.]+\s+[-0-9.]+\s+([0-9.]+)\s+([0-9.]+)"`)
	sizeAttrRe = regexp.MustCompile(`\s(?:width|height)="[^"]*"`)
)

// sizeToViewBox replaces the point-based width and height Graphviz puts on
// the root element with the viewBox extent in pixels. Other attributes are
// left alone.
func sizeToViewBox(svg []byte) []byte {
	loc := rootTagRe.FindIndex(svg)
	if loc == nil {
		return svg
	}
	tag := svg[loc[0]:loc[1]]
	m := viewBoxRe.FindSubmatch(tag)
	if m == nil {
		return svg
	}
	w, errW := strconv.ParseFloat(string(m[1]), 64)
	h, errH := strconv.ParseFloat(string(m[2]), 64)
	if errW != nil || errH != nil || w == 0 || h == 0 {
		return svg
	}

	open := bytes.TrimSuffix(sizeAttrRe.ReplaceAll(tag, nil), []byte(">"))
	sized := fmt.Appendf(nil, `%s width="%.0f" height="%.0f">`, open, w, h)

	out := make([]byte, 0, len(svg)-len(tag)+len(sized))
	out = append(out, svg[:loc[0]]...)
	out = append(out, sized...)
	return append(out, svg[loc[1]:]...)
}
