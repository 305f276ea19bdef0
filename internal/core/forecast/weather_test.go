package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeatherFindByDatetime(t *testing.T) {
	view := weatherAt(10, 5, 80)

	found := view.FindByDatetime(hourAt(10).Add(42 * time.Minute))
	require.NotNil(t, found)
	assert.EqualValues(t, 5, found.Temperature)
	assert.EqualValues(t, 80, found.Humidity)

	assert.Nil(t, view.FindByDatetime(hourAt(11)))
}
