package result

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	found := Found(map[string]interface{}{"id": "abc"})
	assert.True(t, found.IsFound())
	assert.Equal(t, "abc", found.Value["id"])
	assert.Empty(t, found.Message)

	nf := NotFound[map[string]interface{}]()
	assert.Equal(t, StatusNotFound, nf.Status)
	assert.Equal(t, "Data Not Found", nf.Message)
	assert.Nil(t, nf.Value)

	c := Conflict[int](MessageAlreadyExist)
	assert.Equal(t, StatusConflict, c.Status)
	assert.Equal(t, "Sales already exist", c.Message)
	assert.False(t, c.IsFound())

	d := Deleted()
	assert.True(t, d.IsFound())
	assert.Equal(t, "Successfully", d.Message)
}
