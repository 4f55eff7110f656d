package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// hclFile — структура файла конфигурации (кроме блока vars, который
// вычисляется первым).
//
//	workflow_name = "lsst"
//	default_site  = "local"
//
//	vars {
//	  butler = "${env.HOME}/repo"
//	}
//
//	storage {
//	  s3_endpoint = "minio:9000"
//	}
type hclFile struct {
	WorkflowName  *string `hcl:"workflow_name,optional"`
	DefaultSite   *string `hcl:"default_site,optional"`
	StrictAcyclic *bool   `hcl:"strict_acyclic,optional"`

	Database  *hclDatabase  `hcl:"database,block"`
	RabbitMQ  *hclRabbitMQ  `hcl:"rabbitmq,block"`
	Storage   *hclStorage   `hcl:"storage,block"`
	Telemetry *hclTelemetry `hcl:"telemetry,block"`
	API       *hclAPI       `hcl:"api,block"`
}

type hclDatabase struct {
	URL string `hcl:"url"`
}

type hclRabbitMQ struct {
	URL      string  `hcl:"url"`
	Exchange *string `hcl:"exchange,optional"`
}

type hclStorage struct {
	Endpoint        *string `hcl:"s3_endpoint,optional"`
	Region          *string `hcl:"s3_region,optional"`
	AccessKeyID     *string `hcl:"s3_access_key_id,optional"`
	SecretAccessKey *string `hcl:"s3_secret_access_key,optional"`
	UseSSL          *bool   `hcl:"s3_use_ssl,optional"`
}

type hclTelemetry struct {
	LogLevel       *string  `hcl:"log_level,optional"`
	LogFormat      *string  `hcl:"log_format,optional"`
	PushgatewayURL *string  `hcl:"pushgateway_url,optional"`
	Tracing        *bool    `hcl:"tracing,optional"`
	OTLPEndpoint   *string  `hcl:"otlp_endpoint,optional"`
	SampleRate     *float64 `hcl:"sample_rate,optional"`
}

type hclAPI struct {
	Port string `hcl:"port"`
}

var varsSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{{Type: "vars"}},
}

// LoadFile применяет HCL файл поверх текущей конфигурации.
// Выражения видят окружение процесса как env.NAME.
func (c *Config) LoadFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return c.ApplyHCL(src, path, Environ())
}

// ApplyHCL применяет HCL документ поверх текущей конфигурации.
//
// Сначала вычисляется блок vars (выражения видят env), затем остальной
// документ (выражения видят env и vars). Атрибуты, которых нет в
// документе, не меняют текущих значений.
func (c *Config) ApplyHCL(src []byte, filename string, env map[string]string) error {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return fmt.Errorf("parse config %s: %w", filename, diags)
	}

	content, remain, diags := file.Body.PartialContent(varsSchema)
	if diags.HasErrors() {
		return fmt.Errorf("decode config %s: %w", filename, diags)
	}

	envVal := stringObject(env)
	ctx := &hcl.EvalContext{Variables: map[string]cty.Value{"env": envVal}}

	// 1. vars
	for _, block := range content.Blocks {
		attrs, diags := block.Body.JustAttributes()
		if diags.HasErrors() {
			return fmt.Errorf("decode vars in %s: %w", filename, diags)
		}
		for name, attr := range attrs {
			val, diags := attr.Expr.Value(ctx)
			if diags.HasErrors() {
				return fmt.Errorf("evaluate vars.%s in %s: %w", name, filename, diags)
			}
			s, err := ctyString(val)
			if err != nil {
				return fmt.Errorf("vars.%s in %s: %w", name, filename, err)
			}
			c.SetVar(name, s)
		}
	}

	// 2. остальной документ
	ctx.Variables["vars"] = stringObject(c.Vars)

	var parsed hclFile
	if diags := gohcl.DecodeBody(remain, ctx, &parsed); diags.HasErrors() {
		return fmt.Errorf("decode config %s: %w", filename, diags)
	}

	c.apply(&parsed)
	return nil
}

func (c *Config) apply(f *hclFile) {
	setString(&c.WorkflowName, f.WorkflowName)
	setString(&c.DefaultSite, f.DefaultSite)
	if f.StrictAcyclic != nil {
		c.StrictAcyclic = *f.StrictAcyclic
	}

	if f.Database != nil {
		c.DatabaseURL = f.Database.URL
	}
	if f.RabbitMQ != nil {
		c.RabbitMQURL = f.RabbitMQ.URL
		setString(&c.Exchange, f.RabbitMQ.Exchange)
	}
	if s := f.Storage; s != nil {
		setString(&c.S3.Endpoint, s.Endpoint)
		setString(&c.S3.Region, s.Region)
		setString(&c.S3.AccessKeyID, s.AccessKeyID)
		setString(&c.S3.SecretAccessKey, s.SecretAccessKey)
		if s.UseSSL != nil {
			c.S3.UseSSL = *s.UseSSL
		}
	}
	if t := f.Telemetry; t != nil {
		setString(&c.LogLevel, t.LogLevel)
		setString(&c.LogFormat, t.LogFormat)
		setString(&c.PushgatewayURL, t.PushgatewayURL)
		setString(&c.Tracing.Endpoint, t.OTLPEndpoint)
		if t.Tracing != nil {
			c.Tracing.Enabled = *t.Tracing
		}
		if t.SampleRate != nil {
			c.Tracing.SampleRate = *t.SampleRate
		}
	}
	if f.API != nil {
		c.APIPort = f.API.Port
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// ctyString приводит значение выражения к строке.
func ctyString(val cty.Value) (string, error) {
	if val.IsNull() || !val.IsKnown() {
		return "", fmt.Errorf("value must be known and not null")
	}
	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("value must be a string, number or bool: %w", err)
	}
	return str.AsString(), nil
}

// stringObject строит cty-объект из строковой карты.
func stringObject(m map[string]string) cty.Value {
	if len(m) == 0 {
		return cty.EmptyObjectVal
	}
	vals := make(map[string]cty.Value, len(m))
	for k, v := range m {
		vals[k] = cty.StringVal(v)
	}
	return cty.ObjectVal(vals)
}

// Environ возвращает окружение процесса картой.
func Environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// VarNames возвращает имена переменных шаблонов по алфавиту.
func (c *Config) VarNames() []string {
	names := make([]string, 0, len(c.Vars))
	for k := range c.Vars {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
