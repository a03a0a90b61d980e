package main

import (
	"context"

	"github.com/osei222/schoolfees/core"
	"github.com/osei222/schoolfees/core/user"
)

func (cli *commandLine) addUser(uname, email, pwd string, isAdmin bool) error {
	nu := user.NewUser{
		Name:            core.CleanString(uname),
		Username:        core.CleanString(uname, true /* lower */),
		Email:           core.CleanString(email, true /* lower */),
		Password:        pwd,
		PasswordConfirm: pwd,
	}
	if isAdmin {
		nu.Roles = user.AllRoles
	}
	_, err := cli.usrSvc.Create(context.Background(), nu)
	return err
}
