package homeassistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/echocat/slf4g"

	"github.com/blaubaer/stfu/pkg/common"
	"github.com/blaubaer/stfu/pkg/credentials"
	"github.com/blaubaer/stfu/pkg/signal"
)

const DefaultServer = "http://homeassistant.local:8123/"

// ErrCredentialsRejected is returned once Home Assistant rejects the
// credentials after Initialize. From then on the terminal belongs to the
// session, so nobody is asked for new ones.
var ErrCredentialsRejected = errors.New("home assistant rejected the credentials")

// Homeassistant mirrors the session state to an input_boolean entity of a
// Home Assistant instance.
type Homeassistant struct {
	conf         *Configuration
	saveConfFunc func() error
	mutex        sync.Mutex

	lastState   atomic.Pointer[state]
	credentials credentials.Credentials

	client http.Client
	// prompt asks the user for new credentials.
	prompt func(*credentials.Credentials) error
	// initialized prevents any prompt after Initialize.
	initialized atomic.Bool
}

func (this *Homeassistant) Update() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	rsp, err := this.do(http.MethodGet, "/api/", nil)
	if err != nil {
		return err
	}
	defer closeBody(rsp)
	if rsp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d - %s", rsp.StatusCode, rsp.Status)
	}

	return nil
}

func (this *Homeassistant) Ensure(ctx signal.Context) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	s := ctx.State()
	target := state{
		timestamp:  time.Now(),
		state:      signal.SwitchOf(s),
		attributes: sessionAttributesOf(s),
	}

	logger := log.With("entityId", this.conf.EntityId)

	if v := this.lastState.Load(); v != nil {
		if v.timestamp.Add(this.conf.DeadZoneInterval).After(time.Now()) && v.isEqualTo(&target) {
			logger.Debug("Entity is already in requested state (while dead zone timeout). No update needed.")
			return nil
		}
	}

	current, attributes, exists, err := this.readState()
	if err != nil {
		return err
	}

	if !exists {
		logger.Info("Entity not found. It will be created now...")
		attributes["icon"] = "mdi:account-voice-off"
		attributes["friendly_name"] = "STFU " + strings.TrimPrefix(this.conf.EntityId, "input_boolean.")
	} else if target.isEqualTo(&current) {
		logger.Debug("Entity is already in requested state. No update needed.")
		this.lastState.Store(&target)
		return nil
	}

	attributes["editable"] = false
	sReq := statePostRequest{
		State:      target.state,
		Attributes: attributes,
	}
	sReq.setSessionAttributes(target.attributes)

	b, err := json.Marshal(sReq)
	if err != nil {
		return fmt.Errorf("cannot encode state of entity %s: %w", this.conf.EntityId, err)
	}

	sRsp, err := this.do(http.MethodPost, "/api/states/"+this.conf.EntityId, b)
	if err != nil {
		return err
	}
	defer closeBody(sRsp)
	if sRsp.StatusCode != http.StatusOK && sRsp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status code: %d - %s", sRsp.StatusCode, sRsp.Status)
	}

	logger.With("state", target.state).
		With("phase", target.attributes.Phase).
		Debug("Entity updated.")
	this.lastState.Store(&target)

	return nil
}

func (this *Homeassistant) readState() (current state, attributes map[string]any, exists bool, _ error) {
	rsp, err := this.do(http.MethodGet, "/api/states/"+this.conf.EntityId, nil)
	if err != nil {
		return state{}, nil, false, err
	}
	defer closeBody(rsp)

	current.timestamp = time.Now()
	attributes = make(map[string]any)

	switch rsp.StatusCode {
	case http.StatusOK:
		var gRsp stateGetResponse
		if err := json.NewDecoder(rsp.Body).Decode(&gRsp); err != nil {
			return state{}, nil, false, fmt.Errorf("failed to decode state of entity %s: %w", this.conf.EntityId, err)
		}
		current.state = gRsp.State
		if current.attributes, err = gRsp.getSessionAttributes(); err != nil {
			log.WithError(err).
				With("entityId", this.conf.EntityId).
				Info("Cannot retrieve old session attributes. Ignoring...")
		}
		if v := gRsp.Attributes; v != nil {
			attributes = v
		}
		return current, attributes, true, nil
	case http.StatusNotFound:
		return current, attributes, false, nil
	default:
		return state{}, nil, false, fmt.Errorf("unexpected status code: %d - %s", rsp.StatusCode, rsp.Status)
	}
}

func (this *Homeassistant) Initialize(conf *Configuration, saveConfFunc func() error) error {
	this.conf = conf
	this.saveConfFunc = saveConfFunc

	cred, err := this.resolveCredentials(resolveCredentialsReasonDefault)
	if err != nil {
		return err
	}
	this.credentials = cred

	if err := this.Update(); err != nil {
		return err
	}

	this.initialized.Store(true)
	return nil
}

func (this *Homeassistant) loadCredentials() (credentials.Credentials, error) {
	var v credentials.Credentials
	if _, err := v.ReadFromStore(); err != nil {
		return credentials.Credentials{}, err
	}

	if v.HomeAssistantServer == "" {
		v.HomeAssistantServer = this.conf.Server
	}
	if v.HomeAssistantToken == "" {
		v.HomeAssistantToken = this.conf.Token
	}

	return v, nil
}

func (this *Homeassistant) storeCredentials(cred credentials.Credentials) error {
	supported, err := cred.WriteToStore()
	if err != nil {
		return err
	}
	if supported {
		return nil
	}

	this.conf.Server = cred.HomeAssistantServer
	this.conf.Token = cred.HomeAssistantToken
	if v := this.saveConfFunc; v != nil {
		return v()
	}
	return nil
}

type resolveCredentialsReason uint

const (
	resolveCredentialsReasonDefault resolveCredentialsReason = iota
	resolveCredentialsReasonInvalidToken
)

func (this *Homeassistant) resolveCredentials(reason resolveCredentialsReason) (credentials.Credentials, error) {
	cred, err := this.loadCredentials()
	if err != nil {
		return credentials.Credentials{}, err
	}

	if reason == resolveCredentialsReasonDefault && cred.HomeAssistantServer != "" && cred.HomeAssistantToken != "" {
		return cred, nil
	}

	switch reason {
	case resolveCredentialsReasonInvalidToken:
		log.With("server", cred.HomeAssistantServer).
			Error("Home Assistant rejected the long live token.")
		if this.initialized.Load() {
			return credentials.Credentials{}, ErrCredentialsRejected
		}
	default:
		log.Info("Server URL and long live token required to access Home Assistant.")
	}

	for {
		cred.HomeAssistantServer = ""
		cred.HomeAssistantToken = ""
		if err := this.requestCredentials(&cred); err != nil {
			return credentials.Credentials{}, err
		}

		serverOk, tokenOk, err := this.check(cred)
		if err != nil {
			return credentials.Credentials{}, err
		}
		if serverOk && tokenOk {
			if err := this.storeCredentials(cred); err != nil {
				return credentials.Credentials{}, fmt.Errorf("cannot store credentials: %w", err)
			}
			return cred, nil
		}

		if !serverOk {
			log.With("server", cred.HomeAssistantServer).
				Error("Provided Home Assistant's server URL is invalid.")
		} else {
			log.With("server", cred.HomeAssistantServer).
				Error("Provided Home Assistant's long live token is invalid.")
		}
	}
}

func (this *Homeassistant) requestCredentials(cred *credentials.Credentials) error {
	if v := this.prompt; v != nil {
		return v(cred)
	}
	if err := common.PromptStringIfRequired(&cred.HomeAssistantServer, fmt.Sprintf("Server URL (empty = %s)", DefaultServer), true, false); err != nil {
		return fmt.Errorf("cannot request server url: %w", err)
	}
	if cred.HomeAssistantServer == "" {
		cred.HomeAssistantServer = DefaultServer
	}
	if err := common.PromptStringIfRequired(&cred.HomeAssistantToken, "Token", false, true); err != nil {
		return fmt.Errorf("cannot request token: %w", err)
	}
	return nil
}

func (this *Homeassistant) check(cred credentials.Credentials) (serverOk, tokenOk bool, _ error) {
	rsp, err := this.request(cred, http.MethodGet, "/api/", nil)
	if err != nil {
		return false, false, err
	}
	defer closeBody(rsp)

	switch rsp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true, false, nil
	case http.StatusOK:
		return true, true, nil
	default:
		return false, false, nil
	}
}

func (this *Homeassistant) request(cred credentials.Credentials, method, path string, body []byte) (*http.Response, error) {
	ctx, cancelFunc := context.WithTimeout(context.Background(), this.conf.timeout())

	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(cred.HomeAssistantServer, "/")+path, r)
	if err != nil {
		cancelFunc()
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+cred.HomeAssistantToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rsp, err := this.client.Do(req)
	if err != nil {
		cancelFunc()
		return nil, fmt.Errorf("failed to access %v: %w", req.URL, err)
	}
	rsp.Body = &cancelOnClose{rsp.Body, cancelFunc}
	return rsp, nil
}

func (this *Homeassistant) do(method, path string, body []byte) (*http.Response, error) {
	for {
		rsp, err := this.request(this.credentials, method, path, body)
		if err != nil {
			return nil, err
		}

		switch rsp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			closeBody(rsp)
			cred, err := this.resolveCredentials(resolveCredentialsReasonInvalidToken)
			if err != nil {
				return nil, err
			}
			this.credentials = cred
		default:
			return rsp, nil
		}
	}
}

func (this *Homeassistant) Dispose() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.saveConfFunc = nil
	this.lastState.Store(nil)
	return nil
}

func (this *Homeassistant) GetType() signal.Type {
	return signal.TypeHomeAssistant
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (this *cancelOnClose) Close() error {
	defer this.cancel()
	return this.ReadCloser.Close()
}

func closeBody(rsp *http.Response) {
	_, _ = io.Copy(io.Discard, rsp.Body)
	_ = rsp.Body.Close()
}
