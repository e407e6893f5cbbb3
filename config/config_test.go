package config_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/dudk/zen/config"
	zerrors "github.com/dudk/zen/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		description string
		modify      func(*config.Config)
		valid       bool
	}{
		{description: "default", modify: func(*config.Config) {}, valid: true},
		{description: "zero block", modify: func(c *config.Config) { c.BlockSize = 0 }},
		{description: "negative rate", modify: func(c *config.Config) { c.SampleRate = -1 }},
		{description: "no inputs", modify: func(c *config.Config) { c.InputChannels = 0 }, valid: true},
		{description: "no queue", modify: func(c *config.Config) { c.QueueCapacity = 0 }},
	}
	for _, test := range tests {
		c := config.Default()
		test.modify(&c)
		err := c.Validate()
		if test.valid {
			assert.NoError(t, err, test.description)
		} else {
			assert.True(t, errors.Is(err, zerrors.ErrInvalidConfig), test.description)
		}
	}
}

func TestBlockDuration(t *testing.T) {
	c := config.Default()
	c.BlockSize = 441
	c.SampleRate = 44100
	assert.InDelta(t, 10.0, c.BlockDuration(), 1e-9)
}
