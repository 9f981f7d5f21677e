package transport

import (
	"errors"
	"io"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
		permanent bool
	}{
		{
			name:      "service closing is transient",
			err:       &textproto.Error{Code: 421, Msg: "service not available, closing transmission channel"},
			transient: true,
		},
		{
			name:      "mailbox unavailable is permanent",
			err:       &textproto.Error{Code: 550, Msg: "no such user"},
			permanent: true,
		},
		{
			name:      "temporary local error is permanent reject",
			err:       &textproto.Error{Code: 451, Msg: "local error in processing"},
			permanent: true,
		},
		{
			name:      "connection drop is transient",
			err:       io.EOF,
			transient: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			var transient *TransientError
			var permanent *PermanentError
			assert.Equal(t, tt.transient, errors.As(got, &transient))
			assert.Equal(t, tt.permanent, errors.As(got, &permanent))
		})
	}
}

func TestPermanentErrorKeepsCode(t *testing.T) {
	got := classify(&textproto.Error{Code: 552, Msg: "message size exceeds limit"})
	var permanent *PermanentError
	if assert.ErrorAs(t, got, &permanent) {
		assert.Equal(t, 552, permanent.Code)
	}
}
