package queries_test

import (
	"testing"

	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryConstructors_RequireIDs(t *testing.T) {
	var zero kernel.UUID

	_, err := queries.NewGetContractorQueueQuery(zero)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	_, err = queries.NewGetJobBidsQuery(zero, false)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	_, err = queries.NewGetJobHistoryQuery(zero)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestQueryConstructors_Valid(t *testing.T) {
	id := kernel.NewUUID()

	queueQuery, err := queries.NewGetContractorQueueQuery(id)
	require.NoError(t, err)
	require.NoError(t, queueQuery.Validate())
	assert.Equal(t, id, queueQuery.ContractorID())

	bidsQuery, err := queries.NewGetJobBidsQuery(id, true)
	require.NoError(t, err)
	require.NoError(t, bidsQuery.Validate())
	assert.True(t, bidsQuery.PendingOnly())

	historyQuery, err := queries.NewGetJobHistoryQuery(id)
	require.NoError(t, err)
	require.NoError(t, historyQuery.Validate())
}

func TestQueries_NotConstructedViaConstructor(t *testing.T) {
	assert.ErrorIs(t, queries.GetContractorQueueQuery{}.Validate(), queries.ErrGetContractorQueueQueryIsNotConstructed)
	assert.ErrorIs(t, queries.GetJobBidsQuery{}.Validate(), queries.ErrGetJobBidsQueryIsNotConstructed)
	assert.ErrorIs(t, queries.GetJobHistoryQuery{}.Validate(), queries.ErrGetJobHistoryQueryIsNotConstructed)
}
