package module

import "dropwatch/internal/services/dropwatch/domain"

// Ports defines dropwatch module ports exposed via the registry
type Ports struct {
	Worker domain.WorkerPort
	Reader domain.ReaderPort
}
