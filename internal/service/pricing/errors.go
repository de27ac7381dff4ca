package pricing

import "errors"

var ErrInvalidPrice = errors.New("invalid price entry")
