package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SainandaG/badmintion-stringing/internal/types"
)

func TestTwilioSendPostsForm(t *testing.T) {
	var gotPath, gotTo, gotFrom, gotBody string
	var gotUser, gotPass string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		require.NoError(t, r.ParseForm())
		gotTo = r.PostFormValue("To")
		gotFrom = r.PostFormValue("From")
		gotBody = r.PostFormValue("Body")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM123"}`))
	}))
	defer srv.Close()

	n := NewTwilioNotifier(Config{
		AccountSID: "AC42",
		AuthToken:  "token",
		FromNumber: "+15550001111",
		BaseURL:    srv.URL,
	}, nil)

	err := n.Send(context.Background(), "+919900112233", "Your racket is on its way")
	require.NoError(t, err)

	assert.Equal(t, "/2010-04-01/Accounts/AC42/Messages.json", gotPath)
	assert.Equal(t, "AC42", gotUser)
	assert.Equal(t, "token", gotPass)
	assert.Equal(t, "+919900112233", gotTo)
	assert.Equal(t, "+15550001111", gotFrom)
	assert.Equal(t, "Your racket is on its way", gotBody)
}

func TestTwilioSendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"auth failed"}`))
	}))
	defer srv.Close()

	n := NewTwilioNotifier(Config{AccountSID: "AC42", BaseURL: srv.URL}, nil)

	err := n.Send(context.Background(), "+1", "msg")
	require.Error(t, err)

	var serr *types.StringingError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, types.NOTIFY_SEND_FAILED, serr.Code)
	assert.Contains(t, serr.Message, "401")
}

func TestNoopSend(t *testing.T) {
	assert.NoError(t, Noop{}.Send(context.Background(), "+1", "msg"))
}
