package app

import (
	"orgtasks/internal/ports"
)

// Service exposes the org task operations. Platform access is injected
// through ports; the service itself holds no state across calls.
type Service struct {
	Deployer ports.MetadataDeployerPort
	Records  ports.RecordClientPort
	Plans    ports.PlanWriterPort
}
