package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/echocat/slf4g"

	"github.com/blaubaer/stfu/pkg/audio"
	"github.com/blaubaer/stfu/pkg/graph"
)

// resources is everything acquired for one active session. Release returns
// all of it and runs only once.
type resources struct {
	mic   audio.Microphone
	chain *graph.Chain

	once sync.Once
	err  error
}

func acquire(ctx context.Context, host Host, builder *graph.Builder) (_ *resources, rErr error) {
	mic, err := host.AcquireMicrophone(ctx)
	if err != nil {
		return nil, audio.Classify(err)
	}
	defer func() {
		if rErr != nil {
			if err := mic.Release(); err != nil {
				log.WithError(err).
					Warn("Cannot release microphone after failed start.")
			}
		}
	}()

	chain, err := builder.Build(mic)
	if err != nil {
		return nil, audio.Classify(fmt.Errorf("cannot build node chain: %w", err))
	}

	return &resources{
		mic:   mic,
		chain: chain,
	}, nil
}

func (this *resources) Release() error {
	this.once.Do(func() {
		this.chain.Teardown()
		if err := this.mic.Release(); err != nil {
			this.err = errors.Join(this.err, fmt.Errorf("cannot release microphone: %w", err))
		}
	})
	return this.err
}
