package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/poketrainer/internal/auth"
	"github.com/cory-johannsen/poketrainer/internal/auth/passcode"
	"github.com/cory-johannsen/poketrainer/internal/game/capture"
	"github.com/cory-johannsen/poketrainer/internal/game/creature"
	"github.com/cory-johannsen/poketrainer/internal/game/dice"
	"github.com/cory-johannsen/poketrainer/internal/game/roster"
	"github.com/cory-johannsen/poketrainer/internal/game/scan"
	"github.com/cory-johannsen/poketrainer/internal/game/session"
)

const pikachuJSON = `{"id":25,"name":"Pikachu","rarity":"common"}`

var charmander = creature.Creature{ID: 4, Name: "Charmander", Rarity: "uncommon", HP: 39, MaxHP: 39}

func newManager(t *testing.T, settings session.Settings, rolls ...int) *session.Manager {
	t.Helper()
	logger := zaptest.NewLogger(t)
	if len(rolls) == 0 {
		rolls = []int{0}
	}
	resolver := capture.NewResolver(&dice.FixedSource{Values: rolls}, logger, nil)
	return session.NewManager(scan.NewIntake(nil, logger), resolver, settings, logger)
}

func openUnlocked(t *testing.T, m *session.Manager, name string) *session.Trainer {
	t.Helper()
	tr, err := m.Open(name, charmander, "")
	require.NoError(t, err)
	require.NoError(t, tr.Unlock(context.Background(), auth.Allow))
	return tr
}

func TestManager_OpenGetClose(t *testing.T) {
	m := newManager(t, session.Settings{})
	tr, err := m.Open("ash", charmander, "")
	require.NoError(t, err)
	assert.Equal(t, 1, m.Count())

	got, err := m.Get(tr.ID)
	require.NoError(t, err)
	assert.Same(t, tr, got)

	_, err = m.Open("ash", charmander, "")
	assert.ErrorIs(t, err, session.ErrAlreadySignedIn)

	closed, err := m.Close(tr.ID)
	require.NoError(t, err)
	assert.Same(t, tr, closed)
	assert.Zero(t, m.Count())

	_, err = m.Get(tr.ID)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
	_, err = m.Close(uuid.New())
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestTrainer_OperationsRequireOpenGate(t *testing.T) {
	m := newManager(t, session.Settings{})
	tr, err := m.Open("ash", charmander, "")
	require.NoError(t, err)

	_, err = tr.View()
	assert.ErrorIs(t, err, session.ErrGateClosed)
	_, err = tr.Scan(pikachuJSON)
	assert.ErrorIs(t, err, session.ErrGateClosed)
	_, _, err = tr.Confirm(nil)
	assert.ErrorIs(t, err, session.ErrGateClosed)
	_, err = tr.Release(uuid.New())
	assert.ErrorIs(t, err, session.ErrGateClosed)
	_, err = tr.CaptureLog()
	assert.ErrorIs(t, err, session.ErrGateClosed)

	require.Len(t, tr.Snapshot().Team, 1, "snapshot bypasses the gate")
}

func TestTrainer_CaptureLandsInSelectedBox(t *testing.T) {
	m := newManager(t, session.Settings{BoxNames: []string{"Box 1", "Box 2"}})
	tr := openUnlocked(t, m, "ash")

	res, err := tr.SelectBox(1)
	require.NoError(t, err)
	require.True(t, res.Applied)

	out, err := tr.Scan(pikachuJSON)
	require.NoError(t, err)
	require.True(t, out.Success)

	member, res, err := tr.Confirm(nil)
	require.NoError(t, err)
	require.True(t, res.Applied)
	assert.Equal(t, roster.LocationBox, member.Location)
	assert.Equal(t, 1, member.BoxID)

	view, err := tr.View()
	require.NoError(t, err)
	assert.Equal(t, 1, view.SelectedBox)
	assert.Len(t, view.Boxes[1].Members, 1)

	entries, err := tr.CaptureLog()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, member.ID, entries[0].MemberID)
}

func TestTrainer_LandOnTeamAndExplicitDestination(t *testing.T) {
	m := newManager(t, session.Settings{LandOnTeam: true})
	tr := openUnlocked(t, m, "misty")

	_, err := tr.Scan(pikachuJSON)
	require.NoError(t, err)
	member, _, err := tr.Confirm(nil)
	require.NoError(t, err)
	assert.True(t, member.InTeam())

	_, err = tr.Scan(pikachuJSON)
	require.NoError(t, err)
	dest := roster.ToBox(2)
	member, _, err = tr.Confirm(&dest)
	require.NoError(t, err)
	assert.Equal(t, 2, member.BoxID)
}

func TestTrainer_SelectUnknownBox(t *testing.T) {
	m := newManager(t, session.Settings{})
	tr := openUnlocked(t, m, "ash")
	res, err := tr.SelectBox(42)
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Equal(t, roster.ReasonUnknownBox, res.Reason)
}

func TestTrainer_RosterMutations(t *testing.T) {
	m := newManager(t, session.Settings{LandOnTeam: true})
	tr := openUnlocked(t, m, "brock")

	_, err := tr.Scan(pikachuJSON)
	require.NoError(t, err)
	pika, _, err := tr.Confirm(nil)
	require.NoError(t, err)

	res, err := tr.Reorder(roster.TeamRef(), 1, 0)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	view, _ := tr.View()
	assert.Equal(t, pika.ID, view.Team[0].ID)

	res, err = tr.MoveToBox(pika.ID, 0)
	require.NoError(t, err)
	assert.True(t, res.Applied)

	res, err = tr.MoveToTeam(pika.ID)
	require.NoError(t, err)
	assert.True(t, res.Applied)

	res, err = tr.Release(pika.ID)
	require.NoError(t, err)
	assert.True(t, res.Applied)

	view, _ = tr.View()
	require.Len(t, view.Team, 1)
	res, err = tr.Release(view.Team[0].ID)
	require.NoError(t, err)
	assert.Equal(t, roster.ReasonTeamMinimum, res.Reason)
}

func TestTrainer_ScanWithPermission(t *testing.T) {
	m := newManager(t, session.Settings{})
	tr := openUnlocked(t, m, "ash")

	_, err := tr.ScanWithPermission(context.Background(), scan.FixedPermission{Status: scan.PermissionDenied, Reason: "blocked"})
	var denied *scan.PermissionDeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, "blocked", denied.Reason)

	require.NoError(t, tr.Scanner().Decoded(pikachuJSON))
	out, err := tr.ScanWithPermission(context.Background(), scan.FixedPermission{Status: scan.PermissionGranted})
	require.NoError(t, err)
	assert.Equal(t, "Pikachu", out.Creature.Name)

	pending, ok := tr.Pending()
	assert.True(t, ok)
	assert.Equal(t, out, pending)
	require.NoError(t, tr.Dismiss())
}

func TestTrainer_PasscodeUnlock(t *testing.T) {
	hash, err := passcode.Hash("2468")
	require.NoError(t, err)
	m := newManager(t, session.Settings{MaxAttempts: 3})
	tr, err := m.Open("ash", charmander, hash)
	require.NoError(t, err)
	require.NotNil(t, tr.Passcode())

	assert.ErrorIs(t, tr.Unlock(context.Background(), tr.Passcode().With("0000")), auth.ErrAuthenticationFailed)
	assert.False(t, tr.Gate().IsOpen())
	require.NoError(t, tr.Unlock(context.Background(), tr.Passcode().With("2468")))
	assert.True(t, tr.Gate().IsOpen())
}

func TestManager_ResumeFromSnapshot(t *testing.T) {
	m := newManager(t, session.Settings{LandOnTeam: true})
	tr := openUnlocked(t, m, "ash")
	_, err := tr.Scan(pikachuJSON)
	require.NoError(t, err)
	_, _, err = tr.Confirm(nil)
	require.NoError(t, err)

	closed, err := m.Close(tr.ID)
	require.NoError(t, err)
	snap := closed.Snapshot()

	entries := []capture.Entry{{MemberID: uuid.New(), Creature: creature.Creature{ID: 25, Name: "Pikachu", Rarity: "common"}}}
	resumed, err := m.Resume("ash", snap, "", entries)
	require.NoError(t, err)
	assert.NotEqual(t, tr.ID, resumed.ID)
	assert.False(t, resumed.Gate().IsOpen())
	assert.Equal(t, snap, resumed.Snapshot())

	require.NoError(t, resumed.Unlock(context.Background(), auth.Allow))
	log, err := resumed.CaptureLog()
	require.NoError(t, err)
	assert.Equal(t, entries, log)

	_, err = m.Resume("gary", roster.Snapshot{}, "", nil)
	assert.ErrorIs(t, err, roster.ErrInvalidSnapshot)
}

func TestManager_CloseAllDiscardsPending(t *testing.T) {
	m := newManager(t, session.Settings{})
	a := openUnlocked(t, m, "ash")
	openUnlocked(t, m, "misty")
	_, err := a.Scan(pikachuJSON)
	require.NoError(t, err)

	closed := m.CloseAll()
	assert.Len(t, closed, 2)
	assert.Zero(t, m.Count())
	_, ok := a.Pending()
	assert.False(t, ok)
	assert.False(t, a.Gate().IsOpen())
}

func TestManager_RelockAppliesToTrainers(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	m := newManager(t, session.Settings{RelockAfter: time.Minute})
	m.SetClock(func() time.Time { return now })
	tr := openUnlocked(t, m, "ash")

	_, err := tr.View()
	require.NoError(t, err)
	now = now.Add(2 * time.Minute)
	_, err = tr.View()
	assert.ErrorIs(t, err, session.ErrGateClosed)
}

func TestManager_CloseReleasesInFlightCameraScan(t *testing.T) {
	m := newManager(t, session.Settings{})
	tr := openUnlocked(t, m, "ash")

	errCh := make(chan error, 1)
	go func() {
		_, err := tr.ScanWithPermission(context.Background(), scan.FixedPermission{Status: scan.PermissionGranted})
		errCh <- err
	}()

	// let the scan reach the scanner before closing
	time.Sleep(20 * time.Millisecond)
	_, err := m.Close(tr.ID)
	require.NoError(t, err)

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, session.ErrSessionClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("camera scan still blocked after session close")
	}
}

func TestManager_CallerCancelStillEndsCameraScan(t *testing.T) {
	m := newManager(t, session.Settings{})
	tr := openUnlocked(t, m, "ash")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := tr.ScanWithPermission(ctx, scan.FixedPermission{Status: scan.PermissionGranted})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestManager_PasscodeLockoutSurvivesReopen(t *testing.T) {
	hash, err := passcode.Hash("2468")
	require.NoError(t, err)
	m := newManager(t, session.Settings{MaxAttempts: 2})
	ctx := context.Background()

	tr, err := m.Open("ash", charmander, hash)
	require.NoError(t, err)
	assert.ErrorIs(t, tr.Unlock(ctx, tr.Passcode().With("0000")), auth.ErrAuthenticationFailed)
	assert.ErrorIs(t, tr.Unlock(ctx, tr.Passcode().With("1111")), passcode.ErrLockedOut)

	closed, err := m.Close(tr.ID)
	require.NoError(t, err)
	reopened, err := m.Resume("ash", closed.Snapshot(), hash, nil)
	require.NoError(t, err)

	assert.Zero(t, reopened.Passcode().Remaining())
	assert.ErrorIs(t, reopened.Unlock(ctx, reopened.Passcode().With("2468")), passcode.ErrLockedOut)
	assert.False(t, reopened.Gate().IsOpen())

	// a new passcode starts a fresh budget
	newHash, err := passcode.Hash("1357")
	require.NoError(t, err)
	_, err = m.Close(reopened.ID)
	require.NoError(t, err)
	fresh, err := m.Open("ash", charmander, newHash)
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.Passcode().Remaining())
}

func TestTrainer_SimulatedDetection(t *testing.T) {
	pool := []creature.Creature{
		{ID: 16, Name: "Pidgey", Rarity: "common"},
		{ID: 150, Name: "Mewtwo", Rarity: "legendary"},
	}
	detector := capture.NewCatalogDetector(pool, &dice.FixedSource{Values: []int{1}})
	m := newManager(t, session.Settings{Detector: detector}, 5)
	tr, err := m.Open("ash", charmander, "")
	require.NoError(t, err)

	_, err = tr.Simulate()
	assert.ErrorIs(t, err, session.ErrGateClosed)

	require.NoError(t, tr.Unlock(context.Background(), auth.Allow))
	out, err := tr.Simulate()
	require.NoError(t, err)
	assert.Equal(t, "Mewtwo", out.Creature.Name)
	assert.Equal(t, 10, out.Chance)
	assert.True(t, out.Success, "roll 5 < chance 10")

	member, res, err := tr.Confirm(nil)
	require.NoError(t, err)
	require.True(t, res.Applied)
	assert.Equal(t, roster.LocationBox, member.Location)

	plain := openUnlocked(t, newManager(t, session.Settings{}), "misty")
	_, err = plain.Simulate()
	assert.ErrorIs(t, err, session.ErrSimulationDisabled)
}
