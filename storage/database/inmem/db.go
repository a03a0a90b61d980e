package inmemdb

import (
	"sync"

	"github.com/osei222/schoolfees/core/comms"
	"github.com/osei222/schoolfees/core/fee"
	"github.com/osei222/schoolfees/core/student"
	"github.com/osei222/schoolfees/core/user"
	"github.com/osei222/schoolfees/core/wallet"
)

// DB is an in-memory store with the same behavior as the SQL one. Used by
// tests and local dev without a database.
type (
	DB struct {
		user    *userTable
		student *studentTable
		fee     *feeTable
		wallet  *walletTable
		comms   *commsTable
	}

	userTable struct {
		table map[int]*user.User
		mutex sync.RWMutex
	}

	studentTable struct {
		table map[int]*student.Student
		mutex sync.RWMutex
	}

	feeTable struct {
		assignments map[int]*fee.Assignment
		payments    map[int]*fee.Payment
		mutex       sync.RWMutex
	}

	walletTable struct {
		account      wallet.Account
		transactions []wallet.Transaction
		mutex        sync.RWMutex
	}

	commsTable struct {
		templates map[int]*comms.Template
		messages  []comms.Message
		mutex     sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		user:    &userTable{table: make(map[int]*user.User)},
		student: &studentTable{table: make(map[int]*student.Student)},
		fee: &feeTable{
			assignments: make(map[int]*fee.Assignment),
			payments:    make(map[int]*fee.Payment),
		},
		wallet: &walletTable{},
		comms:  &commsTable{templates: make(map[int]*comms.Template)},
	}
}
