package deals

import "errors"

var ErrTitleRequired = errors.New("deal title is required")
