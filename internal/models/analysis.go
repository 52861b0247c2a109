// Package models contains data structures used across handlers
package models

import (
	"html/template"
	"time"
)

// PlaceholderImage is shown until an analysis has produced an image
const PlaceholderImage = "/static/image/Download.jpg"

// DetectedObject is one detection drawn over the analyzed image
type DetectedObject struct {
	ClassName string `json:"class_name"`
	BBox      [4]int `json:"bbox"`
}

// PlaceholderObjects stands in for real detections, which the classifier does
// not return yet: one fixed box whenever either flag is set.
func PlaceholderObjects(moeru, moenai bool) []DetectedObject {
	if !moeru && !moenai {
		return []DetectedObject{}
	}
	return []DetectedObject{{ClassName: "detected_object", BBox: [4]int{0, 0, 100, 100}}}
}

// Panel is one classification panel on the result page
type Panel struct {
	Kind     string
	Title    string
	Image    string
	Detected bool
	Border   string
	Opacity  string
	Caption  string
}

// PanelStyle holds the classes for the detected and not detected looks
type PanelStyle struct {
	OnBorder, OffBorder   string
	OnOpacity, OffOpacity string
}

var (
	MoeruStyle  = PanelStyle{OnBorder: "border-red-500", OffBorder: "border-red-200", OnOpacity: "opacity-100", OffOpacity: "opacity-20"}
	MoenaiStyle = PanelStyle{OnBorder: "border-blue-500", OffBorder: "border-blue-200", OnOpacity: "opacity-100", OffOpacity: "opacity-50"}
)

// NewPanel builds a panel driven only by its own flag
func NewPanel(kind, title, image string, style PanelStyle, detected bool, onCaption, offCaption string) Panel {
	p := Panel{Kind: kind, Title: title, Image: image, Detected: detected}
	if detected {
		p.Border, p.Opacity, p.Caption = style.OnBorder, style.OnOpacity, onCaption
	} else {
		p.Border, p.Opacity, p.Caption = style.OffBorder, style.OffOpacity, offCaption
	}
	return p
}

// ImageSource marks a data URI produced from classifier output as safe for src attributes
func ImageSource(src string) template.URL {
	if src == "" {
		return template.URL(PlaceholderImage)
	}
	return template.URL(src)
}

// PhotoInfo is an archived upload listed on the Past Photos page
type PhotoInfo struct {
	Key           string
	Name          string
	Size          int64
	FormattedSize string
	LastModified  time.Time
	URL           string
}
