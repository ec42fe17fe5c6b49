package options

import (
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	cliflag "k8s.io/component-base/cli/flag"

	"github.com/autopeer-io/livemapper/internal/mapper"
	"github.com/autopeer-io/livemapper/pkg/app"
	"github.com/autopeer-io/livemapper/pkg/log"
	"github.com/autopeer-io/livemapper/pkg/options"
)

type MapperOptions struct {
	HttpOptions     *options.HttpOptions     `json:"http" mapstructure:"http"`
	CorsOptions     *options.CorsOptions     `json:"cors" mapstructure:"cors"`
	CartrackOptions *options.CartrackOptions `json:"cartrack" mapstructure:"cartrack"`
	MqttOptions     *options.MqttOptions     `json:"mqtt" mapstructure:"mqtt"`
	Log             *log.Options             `json:"log" mapstructure:"log"`
}

var _ app.NamedFlagSetOptions = (*MapperOptions)(nil)

func NewMapperOptions() *MapperOptions {
	o := &MapperOptions{
		HttpOptions:     options.NewHttpOptions(),
		CorsOptions:     options.NewCorsOptions(),
		CartrackOptions: options.NewCartrackOptions(),
		MqttOptions:     options.NewMqttOptions(),
		Log:             log.NewOptions(),
	}

	return o
}

func (o *MapperOptions) Flags() cliflag.NamedFlagSets {
	fss := cliflag.NamedFlagSets{}
	o.HttpOptions.AddFlags(fss.FlagSet("http"))
	o.CorsOptions.AddFlags(fss.FlagSet("cors"))
	o.CartrackOptions.AddFlags(fss.FlagSet("cartrack"))
	o.MqttOptions.AddFlags(fss.FlagSet("mqtt"))
	o.Log.AddFlags(fss.FlagSet("log"))
	return fss
}

func (o *MapperOptions) Complete() error {
	if o.Log.Name == "" {
		o.Log.Name = "livemapper"
	}
	return nil
}

func (o *MapperOptions) Validate() error {
	errs := []error{}
	errs = append(errs, o.HttpOptions.Validate()...)
	errs = append(errs, o.CorsOptions.Validate()...)
	errs = append(errs, o.CartrackOptions.Validate()...)
	errs = append(errs, o.MqttOptions.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	return utilerrors.NewAggregate(errs)
}

func (o *MapperOptions) Config() (*mapper.Config, error) {
	return &mapper.Config{
		HttpOptions:     o.HttpOptions,
		CorsOptions:     o.CorsOptions,
		CartrackOptions: o.CartrackOptions,
		MqttOptions:     o.MqttOptions,
	}, nil
}
