package homeassistant

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blaubaer/stfu/pkg/credentials"
	"github.com/blaubaer/stfu/pkg/session"
	"github.com/blaubaer/stfu/pkg/signal"
)

type fakeServer struct {
	*httptest.Server
	token string

	mutex    sync.Mutex
	entities map[string]map[string]any
	posts    int
	gets     int
}

func newFakeServer(t *testing.T, token string) *fakeServer {
	result := &fakeServer{
		token:    token,
		entities: map[string]map[string]any{},
	}
	result.Server = httptest.NewServer(http.HandlerFunc(result.handle))
	t.Cleanup(result.Close)
	return result
}

func (this *fakeServer) handle(w http.ResponseWriter, r *http.Request) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if r.Header.Get("Authorization") != "Bearer "+this.token {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if r.URL.Path == "/api/" {
		_, _ = w.Write([]byte(`{"message":"API running."}`))
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/states/")
	switch r.Method {
	case http.MethodGet:
		this.gets++
		v, ok := this.entities[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(v)
	case http.MethodPost:
		this.posts++
		v := map[string]any{}
		if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		v["entity_id"] = id
		_, existed := this.entities[id]
		this.entities[id] = v
		if existed {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusCreated)
		}
		_ = json.NewEncoder(w).Encode(v)
	}
}

func (this *fakeServer) entity(id string) map[string]any {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.entities[id]
}

func (this *fakeServer) setToken(token string) {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.token = token
}

func (this *fakeServer) counts() (gets, posts int) {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.gets, this.posts
}

func newTestHomeassistant(t *testing.T, server *fakeServer, token string) (*Homeassistant, *Configuration) {
	conf := NewConfiguration()
	conf.Server = server.URL
	conf.Token = token
	conf.EntityId = "input_boolean.test_stfu"
	instance := &Homeassistant{
		prompt: func(*credentials.Credentials) error {
			t.Fatal("unexpected prompt")
			return nil
		},
	}
	return instance, &conf
}

func TestHomeassistant_Ensure(t *testing.T) {
	server := newFakeServer(t, "good")
	instance, conf := newTestHomeassistant(t, server, "good")
	require.NoError(t, instance.Initialize(conf, nil))

	require.NoError(t, instance.Ensure(signal.NewContext(session.State{Phase: session.PhaseActive})))

	actual := server.entity(conf.EntityId)
	require.NotNil(t, actual)
	assert.Equal(t, "on", actual["state"])
	attributes := actual["attributes"].(map[string]any)
	assert.Equal(t, "active", attributes["phase"])
	assert.Equal(t, false, attributes["modulated"])
	assert.Equal(t, "mdi:account-voice-off", attributes["icon"])
	assert.NotContains(t, attributes, "error")

	gets, posts := server.counts()
	require.NoError(t, instance.Ensure(signal.NewContext(session.State{Phase: session.PhaseActive})))
	actualGets, actualPosts := server.counts()
	assert.Equal(t, gets, actualGets, "dead zone")
	assert.Equal(t, posts, actualPosts, "dead zone")

	require.NoError(t, instance.Ensure(signal.NewContext(session.State{Phase: session.PhaseActiveModulated})))
	attributes = server.entity(conf.EntityId)["attributes"].(map[string]any)
	assert.Equal(t, "modulated", attributes["phase"])
	assert.Equal(t, true, attributes["modulated"])
	assert.Equal(t, "mdi:account-voice-off", attributes["icon"])

	require.NoError(t, instance.Ensure(signal.NewContext(session.State{Phase: session.PhaseIdle, Error: "Microphone access was denied"})))
	actual = server.entity(conf.EntityId)
	assert.Equal(t, "off", actual["state"])
	attributes = actual["attributes"].(map[string]any)
	assert.Equal(t, "idle", attributes["phase"])
	assert.Equal(t, "Microphone access was denied", attributes["error"])
}

func TestHomeassistant_Ensure_skipsEqualRemoteState(t *testing.T) {
	server := newFakeServer(t, "good")
	instance, conf := newTestHomeassistant(t, server, "good")
	conf.DeadZoneInterval = 0
	require.NoError(t, instance.Initialize(conf, nil))
	require.NoError(t, instance.Ensure(signal.NewContext(session.State{Phase: session.PhaseActive})))
	_, posts := server.counts()

	require.NoError(t, instance.Ensure(signal.NewContext(session.State{Phase: session.PhaseActive})))

	_, actualPosts := server.counts()
	assert.Equal(t, posts, actualPosts)
}

func TestHomeassistant_promptsForInvalidToken(t *testing.T) {
	server := newFakeServer(t, "good")
	instance, conf := newTestHomeassistant(t, server, "bad")
	prompts := 0
	instance.prompt = func(cred *credentials.Credentials) error {
		prompts++
		cred.HomeAssistantServer = server.URL
		cred.HomeAssistantToken = "good"
		return nil
	}
	saves := 0

	require.NoError(t, instance.Initialize(conf, func() error {
		saves++
		return nil
	}))

	assert.Equal(t, 1, prompts)
	assert.Equal(t, "good", conf.Token)
	assert.Equal(t, 1, saves)
	assert.NoError(t, instance.Ensure(signal.NewContext(session.State{Phase: session.PhaseActive})))
}

func TestHomeassistant_Ensure_doesNotPromptAfterInitialize(t *testing.T) {
	server := newFakeServer(t, "good")
	instance, conf := newTestHomeassistant(t, server, "good")
	require.NoError(t, instance.Initialize(conf, nil))

	server.setToken("rotated")
	err := instance.Ensure(signal.NewContext(session.State{Phase: session.PhaseActive}))

	assert.ErrorIs(t, err, ErrCredentialsRejected)
	assert.Nil(t, server.entity(conf.EntityId))

	server.setToken("good")
	assert.NoError(t, instance.Ensure(signal.NewContext(session.State{Phase: session.PhaseActive})))
}

func TestNormalizeEntityIdPart(t *testing.T) {
	assert.Equal(t, "my_host_local", normalizeEntityIdPart(" My-Host.local "))
	assert.Equal(t, "a_b", normalizeEntityIdPart("a+b"))
}

func TestConfiguration_timeout(t *testing.T) {
	assert.Equal(t, 10*time.Second, Configuration{}.timeout())
	assert.Equal(t, time.Second, Configuration{Timeout: time.Second}.timeout())
}
