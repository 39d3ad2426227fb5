package api

import (
	"testing"

	"github.com/stretchr/testify/require"

	"quizhub/internal/model"
)

func TestDecodeList_BothShapes(t *testing.T) {
	t.Parallel()

	plain := []byte(`[{"id":1,"title":"a"},{"id":2,"title":"b"}]`)
	wrapped := []byte(`{"count":2,"next":null,"results":[{"id":1,"title":"a"},{"id":2,"title":"b"}]}`)

	for _, data := range [][]byte{plain, wrapped} {
		got, err := decodeList[model.Quiz](data)
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.Equal(t, "b", got[1].Title)
	}
}

func TestDecodeList_EmptyWrapper(t *testing.T) {
	t.Parallel()

	got, err := decodeList[model.Quiz]([]byte(`{"results":[]}`))
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestDecodeList_Garbage(t *testing.T) {
	t.Parallel()

	_, err := decodeList[model.Quiz]([]byte(`"nope"`))
	require.Error(t, err)
}

func TestDecodeOne(t *testing.T) {
	t.Parallel()

	q, err := decodeOne[model.Quiz]([]byte(`{"id":7,"title":"capitals","time_limit":120}`))
	require.NoError(t, err)
	require.EqualValues(t, 7, q.ID)
	require.NotNil(t, q.TimeLimit)
	require.Equal(t, 120, *q.TimeLimit)
}
