package cli

import (
	"errors"
	"io/fs"

	"github.com/mesh-intelligence/kanban/pkg/types"
)

// userErrors are the failures caused by the request itself.
var userErrors = []error{
	types.ErrNotFound,
	types.ErrDuplicateItem,
	types.ErrInvalidPosition,
	types.ErrInvalidTitle,
	types.ErrInvalidDocument,
	fs.ErrNotExist,
}

// storeErr classifies an error returned by the Store: request problems exit
// with exitUserError, storage faults and inconsistencies with exitSysError.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return userErr(err)
		}
	}
	return sysErr(err)
}
