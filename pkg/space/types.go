package space

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// RequestId identifies an asynchronous operation accepted by the
// native runtime. It is echoed back by the completion event(s)
// of the operation.
type RequestId uint64

func (r RequestId) String() string {
	return strconv.FormatUint(uint64(r), 10)
}

// Handle is the native runtime handle of a space (anchor).
// The zero value is the invalid handle.
type Handle uint64

const InvalidHandle Handle = 0

func (h Handle) IsValid() bool {
	return h != InvalidHandle
}

func (h Handle) String() string {
	return fmt.Sprintf("0x%x", uint64(h))
}

// UUID is the persistent identity of a space.
type UUID [16]byte

var InvalidUUID UUID

func NewUUID() UUID {
	return UUID(uuid.New())
}

func ParseUUID(s string) (UUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return InvalidUUID, fmt.Errorf("invalid anchor uuid %q: %w", s, err)
	}
	return UUID(u), nil
}

func MustParseUUID(s string) UUID {
	u, err := ParseUUID(s)
	if err != nil {
		panic(err)
	}
	return u
}

func (u UUID) IsValid() bool {
	return u != InvalidUUID
}

func (u UUID) String() string {
	return uuid.UUID(u).String()
}

func (u UUID) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *UUID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*u = InvalidUUID
		return nil
	}
	n, err := ParseUUID(string(data))
	if err != nil {
		return err
	}
	*u = n
	return nil
}

func CompareUUID(a, b UUID) int {
	for i := range a {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}
