package service

import (
	"context"
	"sort"

	"github.com/DavidJaure/CRUDapiDB/internal/model"
	"github.com/DavidJaure/CRUDapiDB/internal/repository"
)

// ── In-memory Repository Stub ─────────────────────────────────────────────────

type stubBiciusuarioRepo struct {
	users  map[uint]*model.Biciusuario
	nextID uint
}

func newStubRepo() *stubBiciusuarioRepo {
	return &stubBiciusuarioRepo{users: make(map[uint]*model.Biciusuario), nextID: 1}
}

func clone(u *model.Biciusuario) *model.Biciusuario {
	c := *u
	c.Bicicletas = append([]model.Bicicleta(nil), u.Bicicletas...)
	c.Registros = append([]model.RegistroBiciusuario(nil), u.Registros...)
	return &c
}

func (r *stubBiciusuarioRepo) id() uint {
	id := r.nextID
	r.nextID++
	return id
}

func (r *stubBiciusuarioRepo) serialTaken(serial string, owner uint) bool {
	for _, u := range r.users {
		if u.ID == owner {
			continue
		}
		if u.BicicletaPorSerial(serial) != nil {
			return true
		}
	}
	return false
}

func (r *stubBiciusuarioRepo) Create(ctx context.Context, u *model.Biciusuario) error {
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return repository.ErrDuplicate
		}
	}
	for _, b := range u.Bicicletas {
		if r.serialTaken(b.Serial, 0) {
			return repository.ErrDuplicate
		}
	}
	u.ID = r.id()
	return r.Guardar(ctx, u)
}

func (r *stubBiciusuarioRepo) FindByUsername(_ context.Context, username string) (*model.Biciusuario, error) {
	for _, u := range r.users {
		if u.Username == username {
			return clone(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubBiciusuarioRepo) FindByID(_ context.Context, id uint) (*model.Biciusuario, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(u), nil
}

func (r *stubBiciusuarioRepo) List(_ context.Context) ([]model.Biciusuario, error) {
	users := make([]model.Biciusuario, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, *clone(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *stubBiciusuarioRepo) Guardar(_ context.Context, u *model.Biciusuario) error {
	for i := range u.Bicicletas {
		b := &u.Bicicletas[i]
		if b.ID == 0 && r.serialTaken(b.Serial, u.ID) {
			return repository.ErrDuplicate
		}
	}
	for i := range u.Bicicletas {
		u.Bicicletas[i].BiciusuarioID = u.ID
		if u.Bicicletas[i].ID == 0 {
			u.Bicicletas[i].ID = r.id()
		}
	}
	for i := range u.Registros {
		u.Registros[i].BiciusuarioID = u.ID
		if u.Registros[i].ID == 0 {
			u.Registros[i].ID = r.id()
		}
	}
	r.users[u.ID] = clone(u)
	return nil
}

func (r *stubBiciusuarioRepo) Delete(_ context.Context, id uint) (bool, error) {
	if _, ok := r.users[id]; !ok {
		return false, nil
	}
	delete(r.users, id)
	return true, nil
}

func (r *stubBiciusuarioRepo) Transaction(_ context.Context, fn func(repo repository.BiciusuarioRepository) error) error {
	snapshot := make(map[uint]*model.Biciusuario, len(r.users))
	for id, u := range r.users {
		snapshot[id] = clone(u)
	}
	if err := fn(r); err != nil {
		r.users = snapshot
		return err
	}
	return nil
}
