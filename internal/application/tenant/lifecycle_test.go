package tenant_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordexa/ordexa-api/internal/application/tenant"
	"github.com/ordexa/ordexa-api/internal/domain"
	"github.com/ordexa/ordexa-api/internal/domain/entity"
)

const maxUsuariosTest = 3

func newLifecycle(store *memStore, revoker *fakeRevoker) *tenant.Lifecycle {
	empresaRepo, _, usuarioRepo := store.reposDirect()
	return tenant.NewLifecycle(store, empresaRepo, usuarioRepo, revoker, maxUsuariosTest, nil)
}

func seedUsuario(store *memStore, uid, empresaID string) {
	store.putUsuario(&entity.Usuario{
		UID:       uid,
		Email:     uid + "@test.co",
		Rol:       entity.RoleVendedor,
		EmpresaID: empresaID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
}

// ── RegisterDevice / UnregisterDevice (espejo servidor) ───────────────────────

// Quien no pertenece a la empresa no puede registrar dispositivos en ella.
func TestLifecycle_RegisterDevice_SinMembresiaEsDenegado(t *testing.T) {
	store := newMemStore()
	seedEmpresa(store, "emp-1", 3, 0)
	seedUsuario(store, "uid-ajeno", "otra-empresa")
	lc := newLifecycle(store, newFakeRevoker())

	_, err := lc.RegisterDevice(context.Background(), "uid-ajeno", registerInput("emp-1", "d1"))
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, 0, store.countDispositivos("emp-1"))
}

// La variante servidor cuenta filas: registra, re-registra (idempotente) y bloquea al llenar.
func TestLifecycle_RegisterDevice_CuentaPorFilasYEsIdempotente(t *testing.T) {
	store := newMemStore()
	seedEmpresa(store, "emp-1", 2, 0)
	seedUsuario(store, "uid-1", "emp-1")
	lc := newLifecycle(store, newFakeRevoker())
	ctx := context.Background()

	res, err := lc.RegisterDevice(ctx, "uid-1", registerInput("emp-1", "d1"))
	require.NoError(t, err)
	assert.Equal(t, tenant.StatusRegistered, res.Status)
	assert.Equal(t, 1, res.Total)

	res, err = lc.RegisterDevice(ctx, "uid-1", registerInput("emp-1", "d1"))
	require.NoError(t, err)
	assert.Equal(t, tenant.StatusAlreadyRegistered, res.Status,
		"re-registrar un dispositivo existente solo refresca lastSeen")

	_, err = lc.RegisterDevice(ctx, "uid-1", registerInput("emp-1", "d2"))
	require.NoError(t, err)
	_, err = lc.RegisterDevice(ctx, "uid-1", registerInput("emp-1", "d3"))
	assert.ErrorIs(t, err, domain.ErrDeviceLimitReached)
	assert.Equal(t, 2, store.countDispositivos("emp-1"))
}

// La baja vía servidor exige membresía y es idempotente.
func TestLifecycle_UnregisterDevice(t *testing.T) {
	store := newMemStore()
	seedEmpresa(store, "emp-1", 3, 0)
	seedUsuario(store, "uid-1", "emp-1")
	seedUsuario(store, "uid-ajeno", "")
	lc := newLifecycle(store, newFakeRevoker())
	ctx := context.Background()

	_, err := lc.RegisterDevice(ctx, "uid-1", registerInput("emp-1", "d1"))
	require.NoError(t, err)

	err = lc.UnregisterDevice(ctx, "uid-ajeno", "emp-1", "d1")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, lc.UnregisterDevice(ctx, "uid-1", "emp-1", "d1"))
	assert.Equal(t, 0, store.empresa("emp-1").DevicesCount)

	// Repetir la baja no es error.
	require.NoError(t, lc.UnregisterDevice(ctx, "uid-1", "emp-1", "d1"))
}

// ── JoinCompany ───────────────────────────────────────────────────────────────

// Un usuario ya vinculado a otra empresa no puede unirse y su membresía no se toca.
func TestLifecycle_JoinCompany_MiembroDeOtraEmpresaFalla(t *testing.T) {
	store := newMemStore()
	seedEmpresa(store, "emp-1", 3, 0)
	seedEmpresa(store, "emp-2", 3, 0)
	seedUsuario(store, "uid-1", "emp-2")
	lc := newLifecycle(store, newFakeRevoker())

	_, err := lc.JoinCompany(context.Background(), "uid-1", "emp-1")
	assert.ErrorIs(t, err, domain.ErrAlreadyInCompany)
	assert.Equal(t, "emp-2", store.usuario("uid-1").EmpresaID,
		"la membresía existente nunca se sobreescribe en silencio")
}

// Unirse a la empresa a la que ya se pertenece cortocircuita sin mutar nada.
func TestLifecycle_JoinCompany_YaMiembroCortocircuita(t *testing.T) {
	store := newMemStore()
	seedEmpresa(store, "emp-1", 3, 0)
	seedUsuario(store, "uid-1", "emp-1")
	lc := newLifecycle(store, newFakeRevoker())

	status, err := lc.JoinCompany(context.Background(), "uid-1", "emp-1")
	require.NoError(t, err)
	assert.Equal(t, tenant.StatusAlreadyInCompany, status)
}

// Empresa suspendida: nadie puede unirse.
func TestLifecycle_JoinCompany_EmpresaSuspendidaFalla(t *testing.T) {
	store := newMemStore()
	seedEmpresa(store, "emp-1", 3, 0)
	now := time.Now()
	e := store.empresa("emp-1")
	e.Suspended = true
	e.SuspendedUpdatedAt = &now
	store.putEmpresa(e)
	seedUsuario(store, "uid-1", "")
	lc := newLifecycle(store, newFakeRevoker())

	_, err := lc.JoinCompany(context.Background(), "uid-1", "emp-1")
	assert.ErrorIs(t, err, domain.ErrEmpresaSuspended)
}

// El límite de usuarios por empresa se respeta.
func TestLifecycle_JoinCompany_LimiteDeUsuarios(t *testing.T) {
	store := newMemStore()
	seedEmpresa(store, "emp-1", 3, 0)
	for _, uid := range []string{"m1", "m2", "m3"} {
		seedUsuario(store, uid, "emp-1")
	}
	seedUsuario(store, "uid-nuevo", "")
	lc := newLifecycle(store, newFakeRevoker())

	_, err := lc.JoinCompany(context.Background(), "uid-nuevo", "emp-1")
	assert.ErrorIs(t, err, domain.ErrUserLimitReached)
	assert.Empty(t, store.usuario("uid-nuevo").EmpresaID)
}

// Dos joins concurrentes por el último lugar: entra exactamente uno.
// La verificación corre dentro de la transacción con la empresa bloqueada,
// cerrando la carrera del conteo no transaccional del diseño original.
func TestLifecycle_JoinCompany_ConcurrenciaNoRebasaElLimite(t *testing.T) {
	store := newMemStore()
	seedEmpresa(store, "emp-1", 3, 0)
	seedUsuario(store, "m1", "emp-1")
	seedUsuario(store, "m2", "emp-1")
	seedUsuario(store, "nuevo-a", "")
	seedUsuario(store, "nuevo-b", "")
	lc := newLifecycle(store, newFakeRevoker())

	var wg sync.WaitGroup
	resultados := make([]error, 2)
	for i, uid := range []string{"nuevo-a", "nuevo-b"} {
		wg.Add(1)
		go func(n int, uid string) {
			defer wg.Done()
			_, resultados[n] = lc.JoinCompany(context.Background(), uid, "emp-1")
		}(i, uid)
	}
	wg.Wait()

	exitos := 0
	for _, err := range resultados {
		if err == nil {
			exitos++
		} else {
			require.ErrorIs(t, err, domain.ErrUserLimitReached)
		}
	}
	assert.Equal(t, 1, exitos, "solo un join debe tomar el último lugar")

	_, _, usuarioRepo := store.reposDirect()
	n, err := usuarioRepo.CountByEmpresa(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Equal(t, 3, n, "la empresa nunca rebasa su límite de usuarios")
}

// ── SetSuspended ──────────────────────────────────────────────────────────────

// Escenario completo: join pre-suspensión, suspensión con revocación, join post-suspensión.
func TestLifecycle_SetSuspended_EscenarioCompleto(t *testing.T) {
	store := newMemStore()
	seedEmpresa(store, "emp-1", 3, 0)
	seedUsuario(store, "owner-1", "emp-1")
	seedUsuario(store, "m2", "emp-1")
	seedUsuario(store, "uid-fresco", "")
	seedUsuario(store, "uid-tarde", "")
	revoker := newFakeRevoker()
	lc := newLifecycle(store, revoker)
	ctx := context.Background()

	// Con la empresa activa, un uid fresco puede unirse.
	status, err := lc.JoinCompany(ctx, "uid-fresco", "emp-1")
	require.NoError(t, err)
	assert.Equal(t, tenant.StatusJoined, status)

	// El owner suspende: el flag queda escrito y las sesiones de todos los miembros se revocan.
	require.NoError(t, lc.SetSuspended(ctx, "owner-1", "emp-1", true))
	assert.True(t, store.empresa("emp-1").Suspended)
	for _, uid := range []string{"owner-1", "m2", "uid-fresco"} {
		assert.True(t, revoker.wasRevoked(uid), "la sesión de %s debe quedar revocada", uid)
	}

	// Con la empresa suspendida, unirse falla con precondición.
	_, err = lc.JoinCompany(ctx, "uid-tarde", "emp-1")
	assert.ErrorIs(t, err, domain.ErrEmpresaSuspended)
}

// Solo owner o admins pueden suspender.
func TestLifecycle_SetSuspended_RequiereOwnerOAdmin(t *testing.T) {
	store := newMemStore()
	seedEmpresa(store, "emp-1", 3, 0)
	seedUsuario(store, "m2", "emp-1")
	lc := newLifecycle(store, newFakeRevoker())

	err := lc.SetSuspended(context.Background(), "m2", "emp-1", true)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.False(t, store.empresa("emp-1").Suspended)
}

// Un admin delegado (no owner) sí puede suspender.
func TestLifecycle_SetSuspended_AdminDelegadoPuede(t *testing.T) {
	store := newMemStore()
	seedEmpresa(store, "emp-1", 3, 0)
	e := store.empresa("emp-1")
	e.Admins = append(e.Admins, "admin-2")
	store.putEmpresa(e)
	seedUsuario(store, "admin-2", "emp-1")
	lc := newLifecycle(store, newFakeRevoker())

	require.NoError(t, lc.SetSuspended(context.Background(), "admin-2", "emp-1", true))
	assert.True(t, store.empresa("emp-1").Suspended)
}

// Las fallas individuales de revocación se tragan: la suspensión ya quedó escrita.
func TestLifecycle_SetSuspended_RevocacionFallidaNoFallaLaSuspension(t *testing.T) {
	store := newMemStore()
	seedEmpresa(store, "emp-1", 3, 0)
	seedUsuario(store, "owner-1", "emp-1")
	seedUsuario(store, "m2", "emp-1")
	revoker := newFakeRevoker()
	revoker.fail["m2"] = true
	lc := newLifecycle(store, revoker)

	require.NoError(t, lc.SetSuspended(context.Background(), "owner-1", "emp-1", true),
		"una revocación fallida no debe abortar la suspensión")
	assert.True(t, store.empresa("emp-1").Suspended)
	assert.True(t, revoker.wasRevoked("owner-1"), "las demás revocaciones sí deben ejecutarse")
}

// Reactivar no revoca sesiones.
func TestLifecycle_SetSuspended_ReactivarNoRevoca(t *testing.T) {
	store := newMemStore()
	seedEmpresa(store, "emp-1", 3, 0)
	now := time.Now()
	e := store.empresa("emp-1")
	e.Suspended = true
	e.SuspendedUpdatedAt = &now
	store.putEmpresa(e)
	seedUsuario(store, "owner-1", "emp-1")
	revoker := newFakeRevoker()
	lc := newLifecycle(store, revoker)

	require.NoError(t, lc.SetSuspended(context.Background(), "owner-1", "emp-1", false))
	assert.False(t, store.empresa("emp-1").Suspended)
	assert.False(t, revoker.wasRevoked("owner-1"))
}

// Empresa inexistente se reporta como not-found, no como permiso.
func TestLifecycle_SetSuspended_EmpresaInexistente(t *testing.T) {
	store := newMemStore()
	lc := newLifecycle(store, newFakeRevoker())

	err := lc.SetSuspended(context.Background(), "owner-1", "no-existe", true)
	assert.ErrorIs(t, err, domain.ErrEmpresaNotFound)
}

// errors.Is sigue funcionando a través de las envolturas del caso de uso.
func TestLifecycle_ErroresSonSentinelas(t *testing.T) {
	store := newMemStore()
	seedEmpresa(store, "emp-1", 3, 0)
	lc := newLifecycle(store, newFakeRevoker())

	_, err := lc.JoinCompany(context.Background(), "uid-sin-registrar", "emp-1")
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))
}
