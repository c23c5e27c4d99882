package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"barobaro/internal/domain"
	"barobaro/internal/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPGateway_Invoke(t *testing.T) {
	var gotPath, gotRequestID string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRequestID = r.Header.Get("X-Request-ID")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"name":"A","steamWorkshopId":"7"}]`))
	}))
	defer server.Close()

	gw := gateway.NewHTTP(server.URL)
	mods, err := gateway.ListInstalledMods(context.Background(), gw)
	require.NoError(t, err)

	assert.Equal(t, "/invoke/list_installed_mods", gotPath)
	assert.NotEmpty(t, gotRequestID)
	assert.Empty(t, gotBody)
	require.Len(t, mods, 1)
	assert.Equal(t, "A", mods[0].Name)
	assert.Equal(t, domain.WorkshopID(7), mods[0].SteamWorkshopID)
}

func TestHTTPGateway_SendsArguments(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		_, _ = w.Write([]byte(`null`))
	}))
	defer server.Close()

	gw := gateway.NewHTTP(server.URL + "/")
	err := gateway.DeleteModList(context.Background(), gw, "Survival")
	require.NoError(t, err)
	assert.Equal(t, "Survival", gotBody["profileName"])
}

func TestHTTPGateway_BackendError(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{name: "json envelope", body: `{"error":"no such list"}`, wantMsg: "no such list"},
		{name: "json string", body: `"disk full"`, wantMsg: "disk full"},
		{name: "plain text", body: "boom\n", wantMsg: "boom"},
		{name: "empty", body: "", wantMsg: "backend returned an error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			gw := gateway.NewHTTP(server.URL)
			_, err := gateway.ReadConfig(context.Background(), gw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrTransport))

			var te *gateway.TransportError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, gateway.CmdReadConfig, te.Command)
			assert.Equal(t, gateway.OpDispatch, te.Op)
			assert.Equal(t, http.StatusInternalServerError, te.Status)
			assert.EqualError(t, te.Err, tt.wantMsg)
		})
	}
}

func TestHTTPGateway_DecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"a list"}`))
	}))
	defer server.Close()

	gw := gateway.NewHTTP(server.URL)
	_, err := gateway.ListModLists(context.Background(), gw)
	require.Error(t, err)

	var te *gateway.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, gateway.OpDecode, te.Op)
	assert.ErrorIs(t, err, domain.ErrTransport)
}

func TestHTTPGateway_NullConfig(t *testing.T) {
	for _, body := range []string{`null`, ``} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))

		gw := gateway.NewHTTP(server.URL)
		_, err := gateway.ReadConfig(context.Background(), gw)
		require.Error(t, err, "body %q", body)

		var te *gateway.TransportError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, gateway.OpDecode, te.Op)
		assert.Equal(t, gateway.CmdReadConfig, te.Command)

		_, err = gateway.GetDefaultConfig(context.Background(), gw)
		assert.ErrorIs(t, err, domain.ErrTransport)
		server.Close()
	}
}

func TestHTTPGateway_EncodeError(t *testing.T) {
	gw := gateway.NewHTTP("http://127.0.0.1:0")
	err := gw.Invoke(context.Background(), "anything", map[string]any{"bad": make(chan int)}, nil)
	require.Error(t, err)

	var te *gateway.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, gateway.OpEncode, te.Op)
}

func TestHTTPGateway_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	gw := gateway.NewHTTP(url)
	_, err := gateway.GetBuildInfo(context.Background(), gw)
	require.Error(t, err)

	var te *gateway.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, gateway.OpDispatch, te.Op)
	assert.Zero(t, te.Status)
}

func TestHTTPGateway_EmptyBackgroundImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	}))
	defer server.Close()

	uri, err := gateway.GetBackgroundImage(context.Background(), gateway.NewHTTP(server.URL))
	require.NoError(t, err)
	assert.Empty(t, uri)
}

func TestHTTPGateway_InvokeRaw(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`"data:image/png;base64,AAAA"`))
	}))
	defer server.Close()

	raw, err := gateway.NewHTTP(server.URL).InvokeRaw(context.Background(), gateway.CmdGetBackgroundImage, nil)
	require.NoError(t, err)
	assert.Equal(t, `"data:image/png;base64,AAAA"`, string(raw))
}

func TestHTTPGateway_WithHeader(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`true`))
	}))
	defer server.Close()

	gw := gateway.NewHTTP(server.URL, gateway.WithHeader("Authorization", "Bearer x"))
	ok, err := gateway.IsBarotraumaMod(context.Background(), gw, 42)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Bearer x", got)
}
