package hive

import (
	"errors"

	"github.com/joshuapare/hiverecon/internal/format"
	"github.com/joshuapare/hiverecon/internal/mmfile"
	"github.com/joshuapare/hiverecon/pkg/types"
)

func wrapFormatErr(err error) error {
	switch {
	case errors.Is(err, format.ErrSignatureMismatch):
		return types.Wrap(types.ErrNotHive, err)
	case errors.Is(err, format.ErrTruncated):
		return &types.Error{Kind: types.ErrKindFormat, Msg: "hive truncated", Err: err}
	case errors.Is(err, mmfile.ErrTooLarge):
		return &types.Error{Kind: types.ErrKindUnsupported, Msg: "hive exceeds size limit", Err: err}
	default:
		return &types.Error{Kind: types.ErrKindCorrupt, Msg: err.Error(), Err: err}
	}
}
