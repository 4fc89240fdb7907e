package main

import "mp_weixin_publisher/cmd"

func main() {
	cmd.Execute()
}
