package env

import (
	"github.com/thatsimonsguy/fireplace-controller/internal/config"
)

var Cfg *config.Config
