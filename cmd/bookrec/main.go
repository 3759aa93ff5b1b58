// Command bookrec 是推荐服务的命令行入口：serve 启动 HTTP 服务，其余子命令用于一次性查询与排查。
package main

func main() {
	Execute()
}
