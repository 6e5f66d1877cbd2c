// Package cloudinary holds the Cloudinary delivery URL contract and thin
// adapters over the Admin and Upload APIs.
package cloudinary

import (
	"sort"
	"strconv"
	"strings"
)

// Param is one transformation parameter, such as w_600 or fl_layer_apply.
type Param struct {
	Key   string
	Value string
}

func (p Param) String() string {
	return p.Key + "_" + p.Value
}

// Step is one URL component: a set of parameters applied together.
type Step []Param

// Encode renders the step as Cloudinary expects: parameters sorted and joined
// with commas.
func (s Step) Encode() string {
	parts := make([]string, 0, len(s))
	for _, p := range s {
		if p.Value == "" {
			continue
		}
		parts = append(parts, p.String())
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

// With returns a copy of the step with p appended.
func (s Step) With(p ...Param) Step {
	out := make(Step, 0, len(s)+len(p))
	out = append(out, s...)
	return append(out, p...)
}

// Get returns the value for key, if present.
func (s Step) Get(key string) (string, bool) {
	for _, p := range s {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Parameter constructors. Keys follow the delivery URL short names.

func Overlay(v string) Param { return Param{"l", v} }
func Width(v int) Param      { return Param{"w", strconv.Itoa(v)} }
func Height(v int) Param     { return Param{"h", strconv.Itoa(v)} }
func Crop(v string) Param    { return Param{"c", v} }
func Gravity(v string) Param { return Param{"g", v} }
func Radius(v int) Param     { return Param{"r", strconv.Itoa(v)} }
func Zoom(v float64) Param   { return Param{"z", strconv.FormatFloat(v, 'f', -1, 64)} }
func Border(v string) Param  { return Param{"bo", v} }
func Flags(v string) Param   { return Param{"fl", v} }
func X(v int) Param          { return Param{"x", strconv.Itoa(v)} }
func Y(v int) Param          { return Param{"y", strconv.Itoa(v)} }
func Color(hex string) Param { return Param{"co", EncodeColor(hex)} }

// EncodeColor converts "#rrggbb" into the rgb:rrggbb form; named colors pass
// through unchanged.
func EncodeColor(c string) string {
	if strings.HasPrefix(c, "#") {
		return "rgb:" + strings.TrimPrefix(c, "#")
	}
	return c
}

// LayerApply is the placement step that commits the preceding overlay.
func LayerApply(extra ...Param) Step {
	return Step{Flags("layer_apply")}.With(extra...)
}
