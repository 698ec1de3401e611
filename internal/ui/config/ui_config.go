package ui_config

import (
	"encoding/json"
	"fmt"
)

type Config struct { //nolint:maligned
	Start           string `hcl:"start"`
	KeyboardDisplay string `hcl:"keyboard_display"`
	PinLength       int    `hcl:"pin_length"`
	PinNext         string `hcl:"pin_next"`
	CheckingDelayMs int    `hcl:"checking_delay_ms"`
	ResetTimeoutSec int    `hcl:"reset_sec"`
	InitialBalance  *int   `hcl:"initial_balance"`
	AmountInstant   bool   `hcl:"amount_instant"`
	FontDir         string `hcl:"font_dir"`
	LogDebug        bool   `hcl:"log_debug"`

	Modes Modes `hcl:"modes"`

	MsgAmountInvalid string `hcl:"msg_amount_invalid"`
	MsgHardwareError string `hcl:"msg_hardware_error"`
	MsgDenied        string `hcl:"msg_denied"`
	MsgOffline       string `hcl:"msg_offline"`
}

// Modes maps state machine roles to display names.
type Modes struct {
	Main          string `hcl:"main"`
	Card          string `hcl:"card"`
	Pin           string `hcl:"pin"`
	Biometric     string `hcl:"biometric"`
	Checking      string `hcl:"checking"`
	Services      string `hcl:"services"`
	Error         string `hcl:"error"`
	SelectAmount  string `hcl:"select_amount"`
	Receipt       string `hcl:"receipt"`
	Offline       string `hcl:"offline"`
	HardwareError string `hcl:"hardware_error"`
}

// Display names used by legacy window documents.
var DefaultModes = Modes{
	Main:          "main",
	Card:          "card",
	Pin:           "pin",
	Biometric:     "biometric",
	Checking:      "checking",
	Services:      "services",
	Error:         "errormsg",
	SelectAmount:  "selectammount",
	Receipt:       "wouldyoulikeareciept",
	Offline:       "offline",
	HardwareError: "hwerror",
}

type Window struct {
	Title  string `hcl:"title" json:"title"`
	Width  int    `hcl:"width" json:"width"`
	Height int    `hcl:"height" json:"height"`
	Back   string `hcl:"back" json:"back"`
	// Source is legacy JSON window document {"window": {...}}, read relative to config.
	Source string `hcl:"source" json:"-"`

	Displays []Display `hcl:"-" json:"displays"`
	// only used for Unmarshal of `display "name" {}` blocks, use AllDisplays()
	XXX_Display []DisplayBlock `hcl:"display" json:"-"`
}

type Display struct {
	Name  string `json:"name"`
	Elems []Elem `json:"elems"`
}

// DisplayBlock is HCL form display "name" { elem "type" { ... } }.
type DisplayBlock struct {
	Name  string      `hcl:"name,key"`
	Elems []ElemBlock `hcl:"elem"`
}

type ElemBlock struct {
	Type string `hcl:"type,key"`
	Elem `hcl:",squash"`
}

type Elem struct {
	Type     string  `hcl:"type" json:"type"`
	Left     float64 `hcl:"left" json:"left"`
	Top      float64 `hcl:"top" json:"top"`
	Width    float64 `hcl:"width" json:"width"`
	Height   float64 `hcl:"height" json:"height"`
	Colour   string  `hcl:"colour" json:"colour"`
	Back     string  `hcl:"back" json:"back"`
	Font     Font    `hcl:"font" json:"font"`
	Text     string  `hcl:"text" json:"text"`
	Input    string  `hcl:"input" json:"input"`
	Location string  `hcl:"location" json:"location"`
}

type Font struct {
	Name  string `hcl:"name" json:"name"`
	Style string `hcl:"style" json:"style"`
	Size  int    `hcl:"size" json:"size"`
}

// AllDisplays returns JSON list first, then HCL blocks, in declaration order.
func (w *Window) AllDisplays() []Display {
	all := make([]Display, 0, len(w.Displays)+len(w.XXX_Display))
	all = append(all, w.Displays...)
	for _, b := range w.XXX_Display {
		d := Display{Name: b.Name, Elems: make([]Elem, len(b.Elems))}
		for i, eb := range b.Elems {
			d.Elems[i] = eb.Elem
			d.Elems[i].Type = eb.Type
		}
		all = append(all, d)
	}
	return all
}

// MergeJSON fills window from legacy JSON document.
// Displays are appended, scalar fields are set only when empty.
func (w *Window) MergeJSON(doc []byte) error {
	var top struct {
		Window *Window `json:"window"`
	}
	if err := json.Unmarshal(doc, &top); err != nil {
		return err
	}
	if top.Window == nil {
		return fmt.Errorf("window object not found")
	}
	src := top.Window
	if w.Title == "" {
		w.Title = src.Title
	}
	if w.Width == 0 {
		w.Width = src.Width
	}
	if w.Height == 0 {
		w.Height = src.Height
	}
	if w.Back == "" {
		w.Back = src.Back
	}
	w.Displays = append(w.Displays, src.Displays...)
	return nil
}
