package control

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	corecontrol "github.com/v2xlab/obu/core/control"
	"github.com/v2xlab/obu/infra/logger"
)

func TestReadCommands(t *testing.T) {
	in := strings.NewReader(`{"type":"speed","value":40}

garbage
{"type":"route","value":"chula"}
`)
	var got []corecontrol.Command
	for c := range ReadCommands(context.Background(), in, logger.NopLogger{}) {
		got = append(got, c)
	}
	if assert.Len(t, got, 2) {
		assert.Equal(t, corecontrol.TypeSpeed, got[0].Type)
		assert.Equal(t, "chula", got[1].String())
	}
}
