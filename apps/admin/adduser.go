package main

import (
	"context"
	"time"

	"github.com/campusflow/campusflow/core"
	"github.com/campusflow/campusflow/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(name, email, role, schoolID, pwd string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		now := time.Now().UTC()
		usr = user.User{
			Name:      name,
			Email:     email,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	usr.Name = name
	usr.Role = role
	usr.SchoolID = schoolID
	usr.Status = user.StatusActive
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}

	if usr.ID == "" {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	} else {
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
	}
	return err
}
