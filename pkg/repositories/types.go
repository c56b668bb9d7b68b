package repositories

import (
	"encoding/json"
	"fmt"

	gametypes "github.com/cbodonnell/tycoon/pkg/game/types"
)

type ErrNotFound struct {
}

func (e *ErrNotFound) Error() string {
	return "not found"
}

func IsNotFound(err error) bool {
	_, ok := err.(*ErrNotFound)
	return ok
}

func encodeSnapshot(snapshot *gametypes.RegistrySnapshot) ([]byte, error) {
	b, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %v", err)
	}
	return b, nil
}

func decodeSnapshot(b []byte) (*gametypes.RegistrySnapshot, error) {
	snapshot := &gametypes.RegistrySnapshot{}
	if err := json.Unmarshal(b, snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %v", err)
	}
	return snapshot, nil
}
