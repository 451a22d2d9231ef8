package modkit

import "dropwatch/internal/modkit/module"

// Module is the common surface for modules that can mount routes and expose ports
type Module = module.Module
