package catalog

import "errors"

var ErrPlanNotFound = errors.New("pricing plan not found")
