package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ithesk/qraxer/pkg/qrsig"
)

func TestCheckinService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	actor := f.login(t)
	f.serveRepairs(repairRow(42, "RO/00042", "under_repair"), repairRow(43, "RO/00043", "confirmed"))
	f.odoo.Result("repair.order", "message_post", 1)

	first, err := f.checkins.Checkin(ctx, actor, f.signed(t, "RO/00042"))
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	require.Equal(t, int64(42), first.RepairID)
	require.Equal(t, "RO/00042", first.RepairCode)
	require.Equal(t, "7", first.TechnicianID)
	require.Equal(t, techName, first.TechnicianName)
	require.True(t, first.Timestamp.Equal(f.now))

	f.now = f.now.Add(time.Minute)
	second, err := f.checkins.Checkin(ctx, actor, f.signed(t, "RO/00043"))
	require.NoError(t, err)

	pending := f.checkins.Pending()
	require.Len(t, pending, 2)
	require.Equal(t, second.ID, pending[0].ID, "newest first")

	require.Len(t, f.events.checkins, 2)
	require.Len(t, f.odoo.CallsTo("repair.order", "message_post"), 2)

	t.Run("respond", func(t *testing.T) {
		desk := Actor{ID: "2", Login: "admin", Name: "Front Desk"}
		n, err := f.checkins.Respond(ctx, desk, first.ID, "Received")
		require.NoError(t, err)
		require.Equal(t, "Received", n.Response)
		require.Equal(t, "Front Desk", n.RespondedBy)

		pending := f.checkins.Pending()
		require.Len(t, pending, 1)
		require.Equal(t, second.ID, pending[0].ID)

		_, err = f.checkins.Respond(ctx, desk, first.ID, "again")
		require.ErrorIs(t, err, ErrConflict)
		_, err = f.checkins.Respond(ctx, desk, "missing", "x")
		require.ErrorIs(t, err, ErrNotFound)

		var verr *ValidationError
		_, err = f.checkins.Respond(ctx, desk, second.ID, " ")
		require.ErrorAs(t, err, &verr)
	})

	t.Run("rejected code records nothing", func(t *testing.T) {
		before := len(f.checkins.Ring.All())
		_, err := f.checkins.Checkin(ctx, actor, "RO/00042|1|deadbeef")
		var rej *qrsig.RejectError
		require.ErrorAs(t, err, &rej)
		require.Len(t, f.checkins.Ring.All(), before)
	})
}
