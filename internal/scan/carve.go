package scan

import (
	"bytes"

	"github.com/joshuapare/hiverecon/internal/buf"
	"github.com/joshuapare/hiverecon/internal/cells"
	"github.com/joshuapare/hiverecon/internal/format"
)

// carve looks inside a free cell for key and value records left behind when
// neighbouring free cells were coalesced. Candidates sit on the cell grid, so
// only 8-byte strides are probed. A record is bounded by its own size field
// when that fits, else by the end of the free cell.
func (s *scanner) carve(c format.Cell) {
	b := s.res.Buf
	end := c.Offset + c.Size
	for p := c.Offset + format.CellAlignment; p+format.CellHeaderSize+format.SignatureSize <= end; p += format.CellAlignment {
		tag := b[p+format.CellHeaderSize : p+format.CellHeaderSize+format.SignatureSize]
		isKey := bytes.Equal(tag, format.NKSignature)
		if !isKey && !bytes.Equal(tag, format.VKSignature) {
			continue
		}
		rel := uint32(p - format.HiveDataBase)
		if _, seen := s.res.Cells[rel]; seen {
			continue
		}
		recEnd := end
		if raw, ok := buf.I32At(b, p); ok {
			size := int(raw)
			if size < 0 {
				size = -size
			}
			if size >= format.CellHeaderSize && p+size <= end {
				recEnd = p + size
			}
		}
		payload := b[p+format.CellHeaderSize : recEnd]
		if isKey {
			nk, err := format.DecodeNK(payload)
			if err != nil {
				continue
			}
			s.res.Cells[rel] = cells.NewKey(rel, recEnd-p, nk)
		} else {
			vk, err := format.DecodeVK(payload)
			if err != nil {
				continue
			}
			s.res.Cells[rel] = cells.NewValue(rel, recEnd-p, vk)
		}
		s.res.Carved++
	}
}
