package ports

import "github.com/reglet-dev/lambda-bridge/domain/entities"

// FixtureParser parses event and context fixture files used by local
// invokers.
type FixtureParser interface {
	// ParseEvent parses an event document into a host-native object.
	ParseEvent(data []byte) (any, error)

	// ParseContext parses a context document. Unknown keys are rejected.
	ParseContext(data []byte) (*entities.ContextFixture, error)
}
