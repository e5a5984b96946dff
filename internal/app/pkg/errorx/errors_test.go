package errorx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("quality confirm: %w", NoRepairAllowance(50, 50))

	assert.True(t, errors.Is(err, ErrQuantityExceeded))
	assert.True(t, errors.Is(err, &BusinessError{Kind: KindQuantityExceeded, Code: CodeNoRepairAllowance}))
	assert.False(t, errors.Is(err, &BusinessError{Kind: KindQuantityExceeded, Code: CodePendingRepair}))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, KindQuantityExceeded, KindOf(err))
}

func TestPrerequisiteNotMetListsMissing(t *testing.T) {
	err := PrerequisiteNotMet("车缝工序未完成", []string{"上领", "上袖"})
	assert.Equal(t, "车缝工序未完成：上领、上袖", err.Error())
	assert.Len(t, err.Details, 2)
	assert.Equal(t, http.StatusUnprocessableEntity, err.Kind.HTTPStatus())
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, KindInternal.HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, KindInvalidInput.HTTPStatus())
	assert.Equal(t, http.StatusConflict, KindConflict.HTTPStatus())
	assert.Equal(t, http.StatusNotFound, KindNotFound.HTTPStatus())
}
