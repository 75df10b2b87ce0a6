package byte_pool

import "sync"

// Pool hands out byte buffers of a fixed capacity.
type Pool struct {
	pool *sync.Pool
}

func NewPool(size int) *Pool {
	return &Pool{
		pool: &sync.Pool{
			New: func() any {
				buffer := make([]byte, 0, size)
				return &buffer
			},
		},
	}
}

// Get returns an empty buffer and the function giving it back to the pool.
// The buffer must not be used after put is called.
func (p *Pool) Get() (buffer []byte, put func()) {
	ptr := p.pool.Get().(*[]byte)
	buffer = (*ptr)[:0]
	put = func() { p.pool.Put(ptr) }
	return
}
