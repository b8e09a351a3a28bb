package export

import "errors"

var ErrUnknownTarget = errors.New("unknown export target")
