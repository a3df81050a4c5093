package kv

import (
	"fmt"
	"strings"

	"github.com/gitbbrid/yiiredis/lib/router"
	"github.com/spf13/cobra"
)

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key (primary)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := executor.Set(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Println("set successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key (replica)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			resp, ok, err := executor.Get(cmd.Context(), key)
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, found=%v, resp=%s\n", key, ok, resp)
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key...]",
		Short: "Deletes one or more keys (primary)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := executor.Del(cmd.Context(), args...)
			if err != nil {
				return err
			}
			fmt.Printf("deleted=%d\n", n)
			return nil
		},
	}
	hasCmd = &cobra.Command{
		Use:   "has [key]",
		Short: "Checks if a key exists (replica)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			n, err := executor.Exists(cmd.Context(), key)
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, found=%t\n", key, n > 0)
			return nil
		},
	}
	execCmd = &cobra.Command{
		Use:   "exec [command] [args...]",
		Short: "Runs any store command, routed by the classification table",
		Long:  "Runs any store command. Read-only commands listed in the classification table are sent to a replica, everything else to the primary.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdArgs := make([]any, 0, len(args)-1)
			for _, a := range args[1:] {
				cmdArgs = append(cmdArgs, a)
			}
			var resp any
			var err error
			if name, _ := cmd.Flags().GetString("class"); name != "" {
				class, perr := router.ParseConnectionClass(name)
				if perr != nil {
					return perr
				}
				resp, err = executor.ExecuteOn(cmd.Context(), class, args[0], cmdArgs...)
			} else {
				resp, err = executor.Execute(cmd.Context(), args[0], cmdArgs...)
			}
			if err != nil {
				return err
			}
			printReply(resp, "")
			return nil
		},
	}
	classifyCmd = &cobra.Command{
		Use:   "classify [command...]",
		Short: "Shows which connection class serves each command",
		Long:  "Shows which connection class serves each command. Without arguments the replica-eligible commands are listed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			table := executor.Table()
			if len(args) == 0 {
				fmt.Println(strings.Join(table.ReplicaCommands(), "\n"))
				return nil
			}
			for _, name := range args {
				fmt.Printf("%s=%s\n", strings.ToLower(name), table.Classify(name))
			}
			return nil
		},
	}
	topologyCmd = &cobra.Command{
		Use:   "topology",
		Short: "Connects the whole topology and prints the endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(clientConf.String())
			if err := rtr.Connect(cmd.Context()); err != nil {
				return err
			}
			primary, secondaries := rtr.Endpoints()
			fmt.Printf("state=%s, connections=%d\n", rtr.State(), rtr.ConnectedCount())
			fmt.Printf("primary=%s\n", primary)
			for i, s := range secondaries {
				fmt.Printf("secondary[%d]=%s\n", i, s)
			}
			if len(secondaries) == 0 {
				c, err := rtr.GetConnection(cmd.Context(), router.ClassReplica)
				if err != nil {
					return err
				}
				fmt.Printf("replica reads served by %s\n", c.Endpoint())
			}
			return nil
		},
	}
)

func init() {
	execCmd.Flags().String("class", "", "Send the command to this connection class (primary or replica) instead of the classified one")
}

// printReply prints a command reply, nested arrays are indented
func printReply(resp any, indent string) {
	switch v := resp.(type) {
	case nil:
		fmt.Printf("%s(nil)\n", indent)
	case []any:
		if len(v) == 0 {
			fmt.Printf("%s(empty array)\n", indent)
		}
		for i, item := range v {
			if nested, ok := item.([]any); ok {
				fmt.Printf("%s%d)\n", indent, i+1)
				printReply(nested, indent+"   ")
				continue
			}
			fmt.Printf("%s%d) ", indent, i+1)
			printReply(item, "")
		}
	case string:
		fmt.Printf("%s%q\n", indent, v)
	case int64:
		fmt.Printf("%s(integer) %d\n", indent, v)
	default:
		fmt.Printf("%s%v\n", indent, v)
	}
}
