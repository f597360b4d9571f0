package service

import (
	"strings"
	"sync"
	"unicode"
)

// OTPInput models the N-cell one-time-code entry widget. Each cell holds at
// most one digit. Filling the last cell, whether by typing or pasting,
// triggers the submit callback exactly once per completion event; a failed
// verification clears every cell and returns focus to cell 0, forcing full
// re-entry rather than preserving a partially wrong code.
type OTPInput struct {
	mu        sync.Mutex
	cells     []rune
	focus     int
	submitted bool
	onSubmit  func(code string)
}

func NewOTPInput(length int, onSubmit func(code string)) *OTPInput {
	if length <= 0 {
		length = 6
	}
	return &OTPInput{
		cells:    make([]rune, length),
		onSubmit: onSubmit,
	}
}

// Enter types one digit into the focused cell and advances focus.
// Non-digit input is ignored.
func (o *OTPInput) Enter(ch rune) {
	if !unicode.IsDigit(ch) {
		return
	}

	o.mu.Lock()
	o.cells[o.focus] = ch
	if o.focus < len(o.cells)-1 {
		o.focus++
	}
	o.mu.Unlock()

	o.maybeSubmit()
}

// Backspace clears the focused cell, or moves focus left and clears that
// cell when the focused one is already empty.
func (o *OTPInput) Backspace() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cells[o.focus] != 0 {
		o.cells[o.focus] = 0
		return
	}
	if o.focus > 0 {
		o.focus--
		o.cells[o.focus] = 0
	}
}

// Paste extracts up to N digits from the pasted string and fills cells
// left-to-right. Focus lands on the last filled cell, or the next empty one
// when the paste was short.
func (o *OTPInput) Paste(s string) {
	var digits []rune
	for _, ch := range s {
		if unicode.IsDigit(ch) {
			digits = append(digits, ch)
			if len(digits) == len(o.cells) {
				break
			}
		}
	}
	if len(digits) == 0 {
		return
	}

	o.mu.Lock()
	for i, ch := range digits {
		o.cells[i] = ch
	}
	if len(digits) < len(o.cells) {
		o.focus = len(digits)
	} else {
		o.focus = len(o.cells) - 1
	}
	o.mu.Unlock()

	o.maybeSubmit()
}

func (o *OTPInput) maybeSubmit() {
	o.mu.Lock()
	if o.submitted || !o.filledLocked() {
		o.mu.Unlock()
		return
	}
	o.submitted = true
	code := o.codeLocked()
	submit := o.onSubmit
	o.mu.Unlock()

	if submit != nil {
		submit(code)
	}
}

// Fail clears all cells and refocuses cell 0 after a rejected verification.
// The input re-arms: a subsequent complete fill submits again.
func (o *OTPInput) Fail() {
	o.mu.Lock()
	defer o.mu.Unlock()

	for i := range o.cells {
		o.cells[i] = 0
	}
	o.focus = 0
	o.submitted = false
}

// Code returns the digits entered so far.
func (o *OTPInput) Code() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.codeLocked()
}

// Filled reports whether every cell holds a digit.
func (o *OTPInput) Filled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.filledLocked()
}

// Focus returns the index of the focused cell.
func (o *OTPInput) Focus() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.focus
}

func (o *OTPInput) filledLocked() bool {
	for _, c := range o.cells {
		if c == 0 {
			return false
		}
	}
	return true
}

func (o *OTPInput) codeLocked() string {
	var sb strings.Builder
	for _, c := range o.cells {
		if c != 0 {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}
