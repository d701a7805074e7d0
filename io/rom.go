package io

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"iter"
	"os"
	"strconv"
	"strings"
)

// Rom is a program image, loaded at Base.
type Rom struct {
	Base uint32 // Load address.
	Data []byte // Little-endian machine code.
}

// Words returns the address and value of each whole word of the image.
func (rom *Rom) Words() iter.Seq2[uint32, uint32] {
	return func(yield func(addr uint32, value uint32) bool) {
		for n := 0; n+4 <= len(rom.Data); n += 4 {
			if !yield(rom.Base+uint32(n), binary.LittleEndian.Uint32(rom.Data[n:])) {
				return
			}
		}
	}
}

// Unmarshal replaces the image data with the raw contents of file.
func (rom *Rom) Unmarshal(file io.Reader) (err error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return
	}

	rom.Data = data

	return
}

// Marshal writes the raw image data to file.
func (rom *Rom) Marshal(file io.Writer) (err error) {
	_, err = file.Write(rom.Data)

	return
}

// UnmarshalHex replaces the image data with the words of a hex listing:
// one 32-bit word per line, with an optional 0x prefix. Blank lines are
// skipped, and '#' or '//' start a comment.
func (rom *Rom) UnmarshalHex(file io.Reader) (err error) {
	var data []byte

	scanner := bufio.NewScanner(file)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()

		text := line
		if index := strings.Index(text, "//"); index >= 0 {
			text = text[:index]
		}
		if index := strings.Index(text, "#"); index >= 0 {
			text = text[:index]
		}
		text = strings.TrimSpace(text)
		if len(text) == 0 {
			continue
		}

		digits := strings.TrimPrefix(strings.TrimPrefix(text, "0x"), "0X")
		digits = strings.ReplaceAll(digits, "_", "")
		var value uint64
		value, err = strconv.ParseUint(digits, 16, 32)
		if err != nil {
			err = &ErrLine{LineNo: lineno, Line: line, Err: ErrHexSyntax}
			return
		}

		data = binary.LittleEndian.AppendUint32(data, uint32(value))
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	rom.Data = data

	return
}

// MarshalHex writes the image as a hex listing. The image must be a whole
// number of words.
func (rom *Rom) MarshalHex(file io.Writer) (err error) {
	if len(rom.Data)%4 != 0 {
		err = ErrAlignment
		return
	}

	for _, value := range rom.Words() {
		_, err = fmt.Fprintf(file, "0x%08x\n", value)
		if err != nil {
			return
		}
	}

	return
}

// ReadBinary reads a raw image.
func ReadBinary(file io.Reader) (rom *Rom, err error) {
	image := &Rom{}
	err = image.Unmarshal(file)
	if err != nil {
		return
	}

	rom = image
	return
}

// ReadHex reads a hex listing image.
func ReadHex(file io.Reader) (rom *Rom, err error) {
	image := &Rom{}
	err = image.UnmarshalHex(file)
	if err != nil {
		return
	}

	rom = image
	return
}

// Open reads an image file, as a hex listing if hex is set.
func Open(path string, hex bool) (rom *Rom, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	if hex {
		rom, err = ReadHex(inf)
	} else {
		rom, err = ReadBinary(inf)
	}
	if err != nil {
		err = fmt.Errorf("%v: %w", path, err)
	}

	return
}
