package usecase

import "sync"

// userLocks hands out one mutex per user name. Entries are dropped when the
// last holder releases them.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*userLock)}
}

// lock blocks until the user's lock is held and returns the release func
func (u *userLocks) lock(userName string) func() {
	u.mu.Lock()
	l, ok := u.locks[userName]
	if !ok {
		l = &userLock{}
		u.locks[userName] = l
	}
	l.refs++
	u.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		u.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(u.locks, userName)
		}
		u.mu.Unlock()
	}
}
