// Package dump serializes post-execution machine state as an XML document
// listing every register and memory cell, and parses such documents back.
package dump

import (
	"encoding/xml"
	"errors"
	"io"

	"github.com/edu-vm/uvm/translate"
)

var f = translate.From

var (
	ErrRange  = errors.New(f("invalid dump range"))
	ErrSparse = errors.New(f("dump cells are not contiguous from zero"))
)

// Reg is one register cell of the dump document.
type Reg struct {
	Index int   `xml:"index,attr"`
	Value int64 `xml:"value,attr"`
}

// Cell is one memory cell of the dump document.
type Cell struct {
	Address int   `xml:"address,attr"`
	Value   int64 `xml:"value,attr"`
}

// Document is the serialized machine state: registers in ascending index
// order and memory cells in ascending address order.
type Document struct {
	XMLName   xml.Name `xml:"dump"`
	Registers []Reg    `xml:"registers>reg"`
	Memory    []Cell   `xml:"memory>cell"`
}

// New builds a dump document covering the full register file and memory.
func New(regs, mem []int64) (doc *Document) {
	doc = &Document{}
	for n, val := range regs {
		doc.Registers = append(doc.Registers, Reg{Index: n, Value: val})
	}
	for n, val := range mem {
		doc.Memory = append(doc.Memory, Cell{Address: n, Value: val})
	}

	return
}

// NewRange builds a dump document covering the full register file and the
// inclusive memory window [lo, hi].
func NewRange(regs, mem []int64, lo, hi int) (doc *Document, err error) {
	if lo < 0 || hi < lo || hi >= len(mem) {
		err = ErrRange
		return
	}

	doc = &Document{}
	for n, val := range regs {
		doc.Registers = append(doc.Registers, Reg{Index: n, Value: val})
	}
	for addr := lo; addr <= hi; addr++ {
		doc.Memory = append(doc.Memory, Cell{Address: addr, Value: mem[addr]})
	}

	return
}

// Marshal renders the document, XML header included.
func (doc *Document) Marshal() (out []byte, err error) {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return
	}

	out = append([]byte(xml.Header), body...)
	out = append(out, '\n')

	return
}

// WriteTo writes the rendered document.
func (doc *Document) WriteTo(w io.Writer) (n int64, err error) {
	out, err := doc.Marshal()
	if err != nil {
		return
	}

	written, err := w.Write(out)
	n = int64(written)

	return
}

// Parse re-reads a dump document.
func Parse(r io.Reader) (doc *Document, err error) {
	doc = &Document{}
	err = xml.NewDecoder(r).Decode(doc)
	if err != nil {
		doc = nil
	}

	return
}

// Dense reconstructs the exact (registers, memory) pair of a full dump.
// Indexes and addresses must run contiguously from zero; anything else is a
// contract violation by the producer.
func (doc *Document) Dense() (regs, mem []int64, err error) {
	for n, reg := range doc.Registers {
		if reg.Index != n {
			err = ErrSparse
			return
		}
		regs = append(regs, reg.Value)
	}
	for n, cell := range doc.Memory {
		if cell.Address != n {
			err = ErrSparse
			return
		}
		mem = append(mem, cell.Value)
	}

	return
}
