package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"strings"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"golang.org/x/term"

	"github.com/trezcool/aula/core"
	"github.com/trezcool/aula/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp      = errors.New("help provided")
	errNoMigrate = errors.New("migrate requires the postgres store engine")
)

type commandLine struct {
	usrSvc     *user.Service
	validate   *validator.Validate
	translator ut.Translator
	db         *sql.DB // postgres engine only
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  adduser -email EMAIL -name NAME -role student|teacher - create a user")
	fmt.Println("  resetpassword -email EMAIL - reset user's password")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose command against the postgres store")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserEmail := addUserCmd.String("email", "", "The user's email. The password will be prompted next.")
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserRole := addUserCmd.String("role", user.RoleStudent, "One of: "+strings.Join(user.Roles, ", "))

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserEmail == "" || *addUserName == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserName, *addUserEmail, *addUserRole, pwd)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordEmail, pwd)
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

func promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	return string(pwd), err
}

func (cli *commandLine) addUser(name, email, role, pwd string) error {
	nu := user.NewUser{
		Name:            name,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
		Role:            role,
	}
	if err := nu.Validate(cli.validate); err != nil {
		return cli.validationErr(err)
	}
	usr, err := cli.usrSvc.Register(context.Background(), nu)
	if err != nil {
		return cli.validationErr(err)
	}
	fmt.Printf("%s %s created (%s)\n", usr.Role, usr.Email, usr.ID)
	return nil
}

func (cli *commandLine) resetPassword(email, pwd string) error {
	rp := user.ResetUserPassword{Email: email, Password: pwd}
	if err := rp.Validate(cli.validate); err != nil {
		return cli.validationErr(err)
	}
	_, err := cli.usrSvc.ResetPassword(context.Background(), rp)
	return err
}

// validationErr flattens validation failures into one readable error. Other errors are returned as is.
func (cli *commandLine) validationErr(err error) error {
	var msgs []string
	var vErrs validator.ValidationErrors
	var appErr *core.ValidationError
	switch {
	case errors.As(err, &vErrs):
		for _, vErr := range vErrs {
			msgs = append(msgs, vErr.Field()+": "+vErr.Translate(cli.translator))
		}
	case errors.As(err, &appErr):
		for _, fErr := range appErr.Fields {
			msgs = append(msgs, fErr.Field+": "+fErr.Error)
		}
	}
	if len(msgs) == 0 {
		return err
	}
	return errors.New(strings.Join(msgs, "; "))
}
