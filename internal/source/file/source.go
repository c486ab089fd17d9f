// Package file reads frames from pcap and pcapng capture files.
package file

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

const pcapngMagic = 0x0A0D0D0A

var ErrNotStarted = errors.New("file source not started")

// Reader is satisfied by pcapgo.Reader and pcapgo.NgReader.
type Reader interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

// NewReader detects pcap or pcapng from the first four bytes of r.
func NewReader(r io.Reader) (Reader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("failed to read capture header: %w", err)
	}
	if binary.BigEndian.Uint32(magic) == pcapngMagic {
		return pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
	}
	return pcapgo.NewReader(br)
}

type FileSource struct {
	path   string
	f      *os.File
	reader Reader
}

func NewSource(path string) (*FileSource, error) {
	if path == "" {
		return nil, fmt.Errorf("file path is required")
	}
	return &FileSource{path: path}, nil
}

func (fs *FileSource) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Open(fs.path)
	if err != nil {
		return fmt.Errorf("failed to open capture file %s: %w", fs.path, err)
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to open capture file %s: %w", fs.path, err)
	}
	fs.f, fs.reader = f, r
	return nil
}

// ReadPacketData returns io.EOF unwrapped at the end of the file.
func (fs *FileSource) ReadPacketData() ([]byte, gopacket.CaptureInfo, error) {
	if fs.reader == nil {
		return nil, gopacket.CaptureInfo{}, ErrNotStarted
	}
	data, ci, err := fs.reader.ReadPacketData()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, gopacket.CaptureInfo{}, io.EOF
		}
		return nil, gopacket.CaptureInfo{}, fmt.Errorf("failed to read packet: %w", err)
	}
	return data, ci, nil
}

func (fs *FileSource) LinkType() layers.LinkType {
	if fs.reader == nil {
		return layers.LinkTypeEthernet // default
	}
	return fs.reader.LinkType()
}

func (fs *FileSource) Stop() error {
	if fs.f == nil {
		return nil
	}
	err := fs.f.Close()
	fs.f, fs.reader = nil, nil
	return err
}
