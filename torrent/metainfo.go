// Package torrent builds BitTorrent metainfo (.torrent) files on top
// of the bencode encoder. Output is canonical: every dict goes through
// the sorted-key path, so the same input always produces the same
// bytes and the same infohash.
package torrent

import (
	"crypto/sha1"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/canonwire/bencode"
)

// DefaultPieceLength is used by CreateFromFile when no piece length is
// given. 256 KiB keeps piece counts reasonable for common file sizes.
const DefaultPieceLength = 256 * 1024

// Info is the info dictionary of a metainfo file.
type Info struct {
	Name        string
	PieceLength int64
	Pieces      []byte // concatenated 20-byte SHA-1 piece digests
	Length      int64  // total payload size, single-file mode
	Private     bool
}

// MaxDepth is 1: a dict of atoms.
func (i *Info) MaxDepth() int { return 1 }

// Encode writes the info dict. Keys arrive pre-sorted.
func (i *Info) Encode(e bencode.SingleItemEncoder) error {
	return e.EmitDict(func(d *bencode.SortedDictEncoder) error {
		if err := d.EmitPair([]byte("length"), i.Length); err != nil {
			return err
		}
		if err := d.EmitPair([]byte("name"), i.Name); err != nil {
			return err
		}
		if err := d.EmitPair([]byte("piece length"), i.PieceLength); err != nil {
			return err
		}
		if err := d.EmitPairBytes([]byte("pieces"), i.Pieces); err != nil {
			return err
		}
		if i.Private {
			return d.EmitPair([]byte("private"), 1)
		}
		return nil
	})
}

// Hash returns the SHA-1 infohash of the bencoded info dict. The
// BitTorrent wire protocol mandates SHA-1 here.
func (i *Info) Hash() ([20]byte, error) {
	raw, err := bencode.ToBytes(i)
	if err != nil {
		return [20]byte{}, err
	}
	return sha1.Sum(raw), nil
}

// MetaInfo is a complete metainfo file.
type MetaInfo struct {
	Announce     string
	AnnounceList [][]string
	Comment      string
	CreatedBy    string
	CreationDate int64 // unix seconds, 0 to omit
	Info         Info
}

// MaxDepth is 3: top dict, announce-list, inner tracker tier list.
func (m *MetaInfo) MaxDepth() int { return 3 }

// Encode writes the metainfo dict. Keys arrive pre-sorted; optional
// fields are omitted rather than written empty.
func (m *MetaInfo) Encode(e bencode.SingleItemEncoder) error {
	return e.EmitDict(func(d *bencode.SortedDictEncoder) error {
		if m.Announce != "" {
			if err := d.EmitPair([]byte("announce"), m.Announce); err != nil {
				return err
			}
		}
		if len(m.AnnounceList) > 0 {
			err := d.EmitPairWith([]byte("announce-list"), func(s bencode.SingleItemEncoder) error {
				return s.EmitList(func(enc *bencode.Encoder) error {
					for _, tier := range m.AnnounceList {
						if err := enc.EmitList(func(inner *bencode.Encoder) error {
							for _, tracker := range tier {
								if err := inner.EmitString(tracker); err != nil {
									return err
								}
							}
							return nil
						}); err != nil {
							return err
						}
					}
					return nil
				})
			})
			if err != nil {
				return err
			}
		}
		if m.Comment != "" {
			if err := d.EmitPair([]byte("comment"), m.Comment); err != nil {
				return err
			}
		}
		if m.CreatedBy != "" {
			if err := d.EmitPair([]byte("created by"), m.CreatedBy); err != nil {
				return err
			}
		}
		if m.CreationDate != 0 {
			if err := d.EmitPair([]byte("creation date"), m.CreationDate); err != nil {
				return err
			}
		}
		return d.EmitPairWith([]byte("info"), func(s bencode.SingleItemEncoder) error {
			return m.Info.Encode(s)
		})
	})
}

// Marshal returns the canonical bencoding of the metainfo file.
func (m *MetaInfo) Marshal() ([]byte, error) {
	return bencode.ToBytes(m)
}

// CreateOptions configures CreateFromFile.
type CreateOptions struct {
	Announce     string
	AnnounceList [][]string
	Comment      string
	CreatedBy    string
	CreationDate int64
	PieceLength  int64 // 0 means DefaultPieceLength
	Private      bool
}

// CreateFromFile hashes one file and builds its metainfo.
func CreateFromFile(path string, opts CreateOptions) (*MetaInfo, error) {
	pieceLength := opts.PieceLength
	if pieceLength <= 0 {
		pieceLength = DefaultPieceLength
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("torrent: open payload: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("torrent: stat payload: %w", err)
	}
	if st.IsDir() {
		return nil, fmt.Errorf("torrent: %s is a directory, single-file mode only", path)
	}

	pieces, err := hashPieces(f, pieceLength)
	if err != nil {
		return nil, err
	}
	Logger().Info("hashed payload",
		zap.String("path", path),
		zap.Int64("size", st.Size()),
		zap.Int("pieces", len(pieces)/sha1.Size))

	return &MetaInfo{
		Announce:     opts.Announce,
		AnnounceList: opts.AnnounceList,
		Comment:      opts.Comment,
		CreatedBy:    opts.CreatedBy,
		CreationDate: opts.CreationDate,
		Info: Info{
			Name:        filepath.Base(path),
			PieceLength: pieceLength,
			Pieces:      pieces,
			Length:      st.Size(),
			Private:     opts.Private,
		},
	}, nil
}

// hashPieces reads r in pieceLength chunks and concatenates the SHA-1
// digest of each chunk. A zero-length payload has zero pieces.
func hashPieces(r io.Reader, pieceLength int64) ([]byte, error) {
	var pieces []byte
	buf := make([]byte, pieceLength)
	for piece := 0; ; piece++ {
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			sum := sha1.Sum(buf[:n])
			pieces = append(pieces, sum[:]...)
			Logger().Debug("hashed piece", zap.Int("piece", piece), zap.Int("bytes", n))
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return pieces, nil
		}
		if err != nil {
			return nil, fmt.Errorf("torrent: read payload: %w", err)
		}
	}
}
