package tenant_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordexa/ordexa-api/internal/application/tenant"
	"github.com/ordexa/ordexa-api/internal/domain"
	"github.com/ordexa/ordexa-api/internal/domain/entity"
)

func seedEmpresa(store *memStore, id string, max, count int) {
	store.putEmpresa(&entity.Empresa{
		ID:              id,
		Nombre:          "Tienda Don José",
		OwnerUID:        "owner-1",
		Admins:          []string{"owner-1"},
		MaxDispositivos: max,
		DevicesCount:    count,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	})
}

func registerInput(empresaID, deviceID string) tenant.RegisterDeviceInput {
	return tenant.RegisterDeviceInput{
		EmpresaID: empresaID,
		DeviceID:  deviceID,
		UID:       "uid-1",
		UserEmail: "vendedor@tienda.co",
		UserAgent: "Mozilla/5.0",
	}
}

// Escenario completo con maxDispositivos=1: alta, refresco, bloqueo, baja y re-alta.
func TestRegistrar_EscenarioCompleto(t *testing.T) {
	store := newMemStore()
	seedEmpresa(store, "emp-1", 1, 0)
	reg := tenant.NewRegistrar(store)
	ctx := context.Background()

	// d1 registra: consume el único cupo.
	res, err := reg.RegisterDevice(ctx, registerInput("emp-1", "d1"))
	require.NoError(t, err)
	assert.Equal(t, tenant.StatusRegistered, res.Status)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, 1, store.empresa("emp-1").DevicesCount)

	// d1 repite: refresco idempotente, el contador no se mueve.
	res, err = reg.RegisterDevice(ctx, registerInput("emp-1", "d1"))
	require.NoError(t, err)
	assert.Equal(t, tenant.StatusRefreshed, res.Status)
	assert.Equal(t, 1, store.empresa("emp-1").DevicesCount)

	// d2 intenta: sin cupo.
	_, err = reg.RegisterDevice(ctx, registerInput("emp-1", "d2"))
	require.ErrorIs(t, err, domain.ErrDeviceLimitReached)
	assert.Equal(t, 1, store.empresa("emp-1").DevicesCount)

	// d1 se desvincula: libera el cupo.
	require.NoError(t, reg.UnregisterDevice(ctx, "emp-1", "d1"))
	assert.Equal(t, 0, store.empresa("emp-1").DevicesCount)

	// d2 ahora sí puede.
	res, err = reg.RegisterDevice(ctx, registerInput("emp-1", "d2"))
	require.NoError(t, err)
	assert.Equal(t, tenant.StatusRegistered, res.Status)
	assert.Equal(t, 1, store.empresa("emp-1").DevicesCount)
}

// Registrar dos veces el mismo dispositivo solo refresca lastSeen.
func TestRegistrar_RefrescoIdempotente(t *testing.T) {
	store := newMemStore()
	seedEmpresa(store, "emp-1", 3, 0)
	reg := tenant.NewRegistrar(store)
	ctx := context.Background()

	_, err := reg.RegisterDevice(ctx, registerInput("emp-1", "d1"))
	require.NoError(t, err)
	antes := store.empresa("emp-1").DevicesCount

	res, err := reg.RegisterDevice(ctx, registerInput("emp-1", "d1"))
	require.NoError(t, err)

	assert.Equal(t, tenant.StatusRefreshed, res.Status)
	assert.Equal(t, antes, store.empresa("emp-1").DevicesCount,
		"el segundo registro del mismo dispositivo no debe mover el contador")
}

// Registrar y desvincular deja el contador como estaba.
func TestRegistrar_LiberacionSimetrica(t *testing.T) {
	store := newMemStore()
	seedEmpresa(store, "emp-1", 3, 0)
	reg := tenant.NewRegistrar(store)
	ctx := context.Background()

	_, err := reg.RegisterDevice(ctx, registerInput("emp-1", "d1"))
	require.NoError(t, err)
	require.NoError(t, reg.UnregisterDevice(ctx, "emp-1", "d1"))

	assert.Equal(t, 0, store.empresa("emp-1").DevicesCount)
	assert.Equal(t, 0, store.countDispositivos("emp-1"))
}

// Bajo cualquier interleaving, nunca existen más cupos ocupados que maxDispositivos.
func TestRegistrar_NoSobrepasaCupoBajoConcurrencia(t *testing.T) {
	store := newMemStore()
	seedEmpresa(store, "emp-1", 3, 0)
	reg := tenant.NewRegistrar(store)

	const intentos = 10
	var wg sync.WaitGroup
	errs := make([]error, intentos)
	for i := 0; i < intentos; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			in := registerInput("emp-1", string(rune('a'+n)))
			_, errs[n] = reg.RegisterDevice(context.Background(), in)
		}(i)
	}
	wg.Wait()

	exitos, bloqueados := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			exitos++
		case errors.Is(err, domain.ErrDeviceLimitReached):
			bloqueados++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}

	assert.Equal(t, 3, exitos, "deben entrar exactamente maxDispositivos dispositivos")
	assert.Equal(t, intentos-3, bloqueados)
	assert.Equal(t, 3, store.empresa("emp-1").DevicesCount)
	assert.Equal(t, 3, store.countDispositivos("emp-1"))
}

// Con 2 de 3 cupos ocupados, dos registros concurrentes de dispositivos nuevos:
// exactamente uno entra y el contador termina en 3, nunca en 4.
func TestRegistrar_CarreraPorElUltimoCupo(t *testing.T) {
	store := newMemStore()
	seedEmpresa(store, "emp-1", 3, 0)
	reg := tenant.NewRegistrar(store)
	ctx := context.Background()

	_, err := reg.RegisterDevice(ctx, registerInput("emp-1", "d1"))
	require.NoError(t, err)
	_, err = reg.RegisterDevice(ctx, registerInput("emp-1", "d2"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	resultados := make([]error, 2)
	for i, dev := range []string{"d3", "d4"} {
		wg.Add(1)
		go func(n int, deviceID string) {
			defer wg.Done()
			_, resultados[n] = reg.RegisterDevice(context.Background(), registerInput("emp-1", deviceID))
		}(i, dev)
	}
	wg.Wait()

	exitos := 0
	for _, err := range resultados {
		if err == nil {
			exitos++
		} else {
			require.ErrorIs(t, err, domain.ErrDeviceLimitReached)
		}
	}
	assert.Equal(t, 1, exitos, "solo uno de los dos debe tomar el último cupo")
	assert.Equal(t, 3, store.empresa("emp-1").DevicesCount, "el contador debe terminar en 3, no en 4")
}

// Empresa inexistente: error fatal, sin reintento ni escrituras.
func TestRegistrar_EmpresaInexistente(t *testing.T) {
	store := newMemStore()
	reg := tenant.NewRegistrar(store)

	_, err := reg.RegisterDevice(context.Background(), registerInput("no-existe", "d1"))
	assert.ErrorIs(t, err, domain.ErrEmpresaNotFound)
}

// Bloqueo por límite no deja escrituras parciales: ni fila de dispositivo ni contador.
func TestRegistrar_BloqueoNoEscribeNada(t *testing.T) {
	store := newMemStore()
	seedEmpresa(store, "emp-1", 1, 0)
	reg := tenant.NewRegistrar(store)
	ctx := context.Background()

	_, err := reg.RegisterDevice(ctx, registerInput("emp-1", "d1"))
	require.NoError(t, err)

	_, err = reg.RegisterDevice(ctx, registerInput("emp-1", "d2"))
	require.ErrorIs(t, err, domain.ErrDeviceLimitReached)

	assert.Equal(t, 1, store.countDispositivos("emp-1"), "el dispositivo bloqueado no debe dejar fila")
	assert.Equal(t, 1, store.empresa("emp-1").DevicesCount)
}

// Desvincular un dispositivo no registrado es no-op, también con empresa inexistente.
func TestRegistrar_UnregisterEsIdempotente(t *testing.T) {
	store := newMemStore()
	seedEmpresa(store, "emp-1", 3, 0)
	reg := tenant.NewRegistrar(store)
	ctx := context.Background()

	require.NoError(t, reg.UnregisterDevice(ctx, "emp-1", "nunca-registrado"))
	assert.Equal(t, 0, store.empresa("emp-1").DevicesCount)

	require.NoError(t, reg.UnregisterDevice(ctx, "empresa-inexistente", "d1"))
}

// Ante deriva previa del contador, el decremento queda acotado en cero.
func TestRegistrar_DecrementoAcotadoEnCero(t *testing.T) {
	store := newMemStore()
	seedEmpresa(store, "emp-1", 3, 0) // contador ya en 0
	store.putDispositivo(&entity.Dispositivo{
		EmpresaID: "emp-1", DeviceID: "fantasma", UID: "uid-1",
		CreatedAt: time.Now(), LastSeen: time.Now(),
	})
	reg := tenant.NewRegistrar(store)

	require.NoError(t, reg.UnregisterDevice(context.Background(), "emp-1", "fantasma"))
	assert.Equal(t, 0, store.empresa("emp-1").DevicesCount, "el contador nunca baja de cero")
}

// Un user agent cuyo byte 150 cae dentro de una runa multibyte se recorta
// en el borde de runa anterior: lo almacenado siempre es UTF-8 válido.
func TestRegistrar_UserAgentSeRecortaEnBordeDeRuna(t *testing.T) {
	store := newMemStore()
	seedEmpresa(store, "emp-1", 3, 0)
	reg := tenant.NewRegistrar(store)
	ctx := context.Background()

	in := registerInput("emp-1", "d1")
	in.UserAgent = strings.Repeat("a", 149) + "ñoño exagerado"

	_, err := reg.RegisterDevice(ctx, in)
	require.NoError(t, err)

	d := store.dispositivo("emp-1", "d1")
	require.NotNil(t, d)
	assert.True(t, utf8.ValidString(d.UserAgent), "el user agent almacenado debe ser UTF-8 válido")
	assert.LessOrEqual(t, len(d.UserAgent), 150)
	assert.Equal(t, strings.Repeat("a", 149), d.UserAgent, "la ñ partida se descarta entera")

	// El refresco aplica el mismo recorte que el alta.
	in.UserAgent = strings.Repeat("é", 100) // 200 bytes
	res, err := reg.RegisterDevice(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, tenant.StatusRefreshed, res.Status)

	d = store.dispositivo("emp-1", "d1")
	require.NotNil(t, d)
	assert.True(t, utf8.ValidString(d.UserAgent))
	assert.Equal(t, strings.Repeat("é", 75), d.UserAgent)
}
