package tenant_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ordexa/ordexa-api/internal/application/tenant"
	"github.com/ordexa/ordexa-api/internal/domain"
	"github.com/ordexa/ordexa-api/internal/domain/entity"
	"github.com/ordexa/ordexa-api/internal/domain/repository"
)

// memStore es un doble en memoria del almacén transaccional: cada transacción
// trabaja sobre una copia del estado bajo un lock global y solo publica al
// hacer commit, igual que la BD real (fila bloqueada + rollback ante error).
type memStore struct {
	mu    sync.Mutex
	state *memState
}

type memState struct {
	empresas     map[string]*entity.Empresa
	dispositivos map[string]*entity.Dispositivo // clave empresaID + "/" + deviceID
	usuarios     map[string]*entity.Usuario
}

func newMemStore() *memStore {
	return &memStore{state: &memState{
		empresas:     map[string]*entity.Empresa{},
		dispositivos: map[string]*entity.Dispositivo{},
		usuarios:     map[string]*entity.Usuario{},
	}}
}

func (s *memState) clone() *memState {
	c := &memState{
		empresas:     make(map[string]*entity.Empresa, len(s.empresas)),
		dispositivos: make(map[string]*entity.Dispositivo, len(s.dispositivos)),
		usuarios:     make(map[string]*entity.Usuario, len(s.usuarios)),
	}
	for k, v := range s.empresas {
		cp := *v
		cp.Admins = append([]string(nil), v.Admins...)
		c.empresas[k] = &cp
	}
	for k, v := range s.dispositivos {
		cp := *v
		c.dispositivos[k] = &cp
	}
	for k, v := range s.usuarios {
		cp := *v
		c.usuarios[k] = &cp
	}
	return c
}

func deviceKey(empresaID, deviceID string) string { return empresaID + "/" + deviceID }

// Seed helpers (fuera de transacción).

func (s *memStore) putEmpresa(e *entity.Empresa) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.state.empresas[e.ID] = &cp
}

func (s *memStore) putUsuario(u *entity.Usuario) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.state.usuarios[u.UID] = &cp
}

func (s *memStore) putDispositivo(d *entity.Dispositivo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	s.state.dispositivos[deviceKey(d.EmpresaID, d.DeviceID)] = &cp
}

func (s *memStore) empresa(id string) *entity.Empresa {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.state.empresas[id]; ok {
		cp := *e
		return &cp
	}
	return nil
}

func (s *memStore) usuario(uid string) *entity.Usuario {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.state.usuarios[uid]; ok {
		cp := *u
		return &cp
	}
	return nil
}

func (s *memStore) dispositivo(empresaID, deviceID string) *entity.Dispositivo {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.state.dispositivos[deviceKey(empresaID, deviceID)]; ok {
		cp := *d
		return &cp
	}
	return nil
}

func (s *memStore) countDispositivos(empresaID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, d := range s.state.dispositivos {
		if d.EmpresaID == empresaID {
			n++
		}
	}
	return n
}

// Run implementa tenant.TxRunner: lock global, trabajar sobre copia, publicar en commit.
func (s *memStore) Run(ctx context.Context, fn func(
	empresaRepo repository.EmpresaRepository,
	dispositivoRepo repository.DispositivoRepository,
	usuarioRepo repository.UsuarioRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.clone()
	err := fn(memEmpresaRepo{working}, memDispositivoRepo{working}, memUsuarioRepo{working})
	if err != nil {
		return err // rollback: se descarta la copia
	}
	s.state = working
	return nil
}

var _ tenant.TxRunner = (*memStore)(nil)

// Repos atados a la copia de trabajo de una transacción (o al estado directo
// para lecturas fuera de tx, vía reposDirect).

type memEmpresaRepo struct{ st *memState }

func (r memEmpresaRepo) Create(_ context.Context, e *entity.Empresa) error {
	if _, ok := r.st.empresas[e.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *e
	r.st.empresas[e.ID] = &cp
	return nil
}

func (r memEmpresaRepo) GetByID(_ context.Context, id string) (*entity.Empresa, error) {
	if e, ok := r.st.empresas[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, nil
}

func (r memEmpresaRepo) GetForUpdate(ctx context.Context, id string) (*entity.Empresa, error) {
	return r.GetByID(ctx, id)
}

func (r memEmpresaRepo) SetSuspended(_ context.Context, id string, suspended bool, at time.Time) error {
	e, ok := r.st.empresas[id]
	if !ok {
		return domain.ErrEmpresaNotFound
	}
	e.Suspended = suspended
	e.SuspendedUpdatedAt = &at
	return nil
}

func (r memEmpresaRepo) UpdateDevicesCount(_ context.Context, id string, count int) error {
	e, ok := r.st.empresas[id]
	if !ok {
		return domain.ErrEmpresaNotFound
	}
	e.DevicesCount = count
	return nil
}

func (r memEmpresaRepo) Update(_ context.Context, e *entity.Empresa) error {
	cp := *e
	r.st.empresas[e.ID] = &cp
	return nil
}

type memDispositivoRepo struct{ st *memState }

func (r memDispositivoRepo) Get(_ context.Context, empresaID, deviceID string) (*entity.Dispositivo, error) {
	if d, ok := r.st.dispositivos[deviceKey(empresaID, deviceID)]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, nil
}

func (r memDispositivoRepo) Create(_ context.Context, d *entity.Dispositivo) error {
	key := deviceKey(d.EmpresaID, d.DeviceID)
	if _, ok := r.st.dispositivos[key]; ok {
		return domain.ErrDuplicate
	}
	cp := *d
	r.st.dispositivos[key] = &cp
	return nil
}

func (r memDispositivoRepo) Touch(_ context.Context, d *entity.Dispositivo) error {
	key := deviceKey(d.EmpresaID, d.DeviceID)
	existing, ok := r.st.dispositivos[key]
	if !ok {
		return domain.ErrNotFound
	}
	existing.UID = d.UID
	existing.UserEmail = d.UserEmail
	existing.UserAgent = d.UserAgent
	existing.LastSeen = d.LastSeen
	return nil
}

func (r memDispositivoRepo) Delete(_ context.Context, empresaID, deviceID string) error {
	delete(r.st.dispositivos, deviceKey(empresaID, deviceID))
	return nil
}

func (r memDispositivoRepo) ListByEmpresa(_ context.Context, empresaID string) ([]*entity.Dispositivo, error) {
	var list []*entity.Dispositivo
	for _, d := range r.st.dispositivos {
		if d.EmpresaID == empresaID {
			cp := *d
			list = append(list, &cp)
		}
	}
	return list, nil
}

func (r memDispositivoRepo) CountByEmpresa(_ context.Context, empresaID string) (int, error) {
	n := 0
	for _, d := range r.st.dispositivos {
		if d.EmpresaID == empresaID {
			n++
		}
	}
	return n, nil
}

type memUsuarioRepo struct{ st *memState }

func (r memUsuarioRepo) Create(_ context.Context, u *entity.Usuario) error {
	if _, ok := r.st.usuarios[u.UID]; ok {
		return domain.ErrDuplicate
	}
	cp := *u
	r.st.usuarios[u.UID] = &cp
	return nil
}

func (r memUsuarioRepo) GetByUID(_ context.Context, uid string) (*entity.Usuario, error) {
	if u, ok := r.st.usuarios[uid]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r memUsuarioRepo) GetByEmail(_ context.Context, email string) (*entity.Usuario, error) {
	for _, u := range r.st.usuarios {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memUsuarioRepo) SetEmpresa(_ context.Context, uid, empresaID, rol string, joinedAt time.Time) error {
	u, ok := r.st.usuarios[uid]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.EmpresaID = empresaID
	u.Rol = rol
	u.JoinedAt = &joinedAt
	return nil
}

func (r memUsuarioRepo) ListByEmpresa(_ context.Context, empresaID string) ([]*entity.Usuario, error) {
	var list []*entity.Usuario
	for _, u := range r.st.usuarios {
		if u.EmpresaID == empresaID {
			cp := *u
			list = append(list, &cp)
		}
	}
	return list, nil
}

func (r memUsuarioRepo) CountByEmpresa(_ context.Context, empresaID string) (int, error) {
	n := 0
	for _, u := range r.st.usuarios {
		if u.EmpresaID == empresaID {
			n++
		}
	}
	return n, nil
}

// reposDirect expone repos de solo-lectura sobre el estado publicado, para los
// casos de uso que leen fuera de transacción (Lifecycle, Resolver).
func (s *memStore) reposDirect() (repository.EmpresaRepository, repository.DispositivoRepository, repository.UsuarioRepository) {
	return lockedEmpresaRepo{s}, lockedDispositivoRepo{s}, lockedUsuarioRepo{s}
}

type lockedEmpresaRepo struct{ s *memStore }

func (r lockedEmpresaRepo) with() memEmpresaRepo { return memEmpresaRepo{r.s.state} }

func (r lockedEmpresaRepo) Create(ctx context.Context, e *entity.Empresa) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.with().Create(ctx, e)
}
func (r lockedEmpresaRepo) GetByID(ctx context.Context, id string) (*entity.Empresa, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.with().GetByID(ctx, id)
}
func (r lockedEmpresaRepo) GetForUpdate(ctx context.Context, id string) (*entity.Empresa, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.with().GetForUpdate(ctx, id)
}
func (r lockedEmpresaRepo) SetSuspended(ctx context.Context, id string, suspended bool, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.with().SetSuspended(ctx, id, suspended, at)
}
func (r lockedEmpresaRepo) UpdateDevicesCount(ctx context.Context, id string, count int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.with().UpdateDevicesCount(ctx, id, count)
}
func (r lockedEmpresaRepo) Update(ctx context.Context, e *entity.Empresa) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.with().Update(ctx, e)
}

type lockedDispositivoRepo struct{ s *memStore }

func (r lockedDispositivoRepo) with() memDispositivoRepo { return memDispositivoRepo{r.s.state} }

func (r lockedDispositivoRepo) Get(ctx context.Context, empresaID, deviceID string) (*entity.Dispositivo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.with().Get(ctx, empresaID, deviceID)
}
func (r lockedDispositivoRepo) Create(ctx context.Context, d *entity.Dispositivo) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.with().Create(ctx, d)
}
func (r lockedDispositivoRepo) Touch(ctx context.Context, d *entity.Dispositivo) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.with().Touch(ctx, d)
}
func (r lockedDispositivoRepo) Delete(ctx context.Context, empresaID, deviceID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.with().Delete(ctx, empresaID, deviceID)
}
func (r lockedDispositivoRepo) ListByEmpresa(ctx context.Context, empresaID string) ([]*entity.Dispositivo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.with().ListByEmpresa(ctx, empresaID)
}
func (r lockedDispositivoRepo) CountByEmpresa(ctx context.Context, empresaID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.with().CountByEmpresa(ctx, empresaID)
}

type lockedUsuarioRepo struct{ s *memStore }

func (r lockedUsuarioRepo) with() memUsuarioRepo { return memUsuarioRepo{r.s.state} }

func (r lockedUsuarioRepo) Create(ctx context.Context, u *entity.Usuario) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.with().Create(ctx, u)
}
func (r lockedUsuarioRepo) GetByUID(ctx context.Context, uid string) (*entity.Usuario, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.with().GetByUID(ctx, uid)
}
func (r lockedUsuarioRepo) GetByEmail(ctx context.Context, email string) (*entity.Usuario, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.with().GetByEmail(ctx, email)
}
func (r lockedUsuarioRepo) SetEmpresa(ctx context.Context, uid, empresaID, rol string, joinedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.with().SetEmpresa(ctx, uid, empresaID, rol, joinedAt)
}
func (r lockedUsuarioRepo) ListByEmpresa(ctx context.Context, empresaID string) ([]*entity.Usuario, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.with().ListByEmpresa(ctx, empresaID)
}
func (r lockedUsuarioRepo) CountByEmpresa(ctx context.Context, empresaID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.with().CountByEmpresa(ctx, empresaID)
}

// fakeRevoker registra las revocaciones de sesión solicitadas.
type fakeRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	fail    map[string]bool // uids cuya revocación debe fallar
}

func newFakeRevoker() *fakeRevoker {
	return &fakeRevoker{revoked: map[string]time.Time{}, fail: map[string]bool{}}
}

func (f *fakeRevoker) RevokeAll(_ context.Context, uid string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[uid] {
		return errors.New("revocación fallida")
	}
	f.revoked[uid] = at
	return nil
}

func (f *fakeRevoker) wasRevoked(uid string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.revoked[uid]
	return ok
}
