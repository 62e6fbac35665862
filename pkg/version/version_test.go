package version_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hashkit-io/hashkit-go/pkg/version"
)

func TestString(t *testing.T) {
	want := fmt.Sprintf("%d.%d.%d", version.Major, version.Minor, version.Patch)
	assert.Equal(t, want, version.String())
}
